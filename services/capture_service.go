package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CaptureState is the single tagged state of a capture session. Illegal
// combinations (live camera + pending preview, submitting + labeling)
// are unrepresentable.
type CaptureState string

const (
	StateIdle            CaptureState = "idle"
	StateModeSelect      CaptureState = "mode-select"
	StateCameraLive      CaptureState = "camera-live"
	StateCapturedPreview CaptureState = "captured-preview"
	StateSelfLabeling    CaptureState = "self-labeling"
	StateSubmitting      CaptureState = "submitting"
	StateClosed          CaptureState = "closed"
)

// MediaStream is an acquired exclusive camera/media resource.
type MediaStream interface {
	Frame(ctx context.Context) ([]byte, error)
	Release()
}

// MediaSource hands out the camera stream. At most one acquisition is
// live per session; Acquire should return ErrPermissionDenied when the
// user refused camera access so callers can fall back to file upload.
type MediaSource interface {
	Acquire(ctx context.Context) (MediaStream, error)
}

// Analyzer is the slice of AnalysisService the capture flow needs.
type Analyzer interface {
	Route(ctx context.Context, mode CaptureMode, payload, prompt string) (*AnalysisResult, error)
}

// LabelSuggester proposes free-text labels for an image payload when
// automatic detection is inconclusive (see RekognitionService).
type LabelSuggester interface {
	SuggestLabels(ctx context.Context, payload string) ([]string, error)
}

// CaptureSession drives one multi-modal capture from mode selection to
// submission. Whatever path leaves a stream-holding state releases the
// stream, error exits included.
type CaptureSession struct {
	ID        string
	createdAt time.Time

	mu        sync.Mutex
	state     CaptureState
	mode      CaptureMode
	stream    MediaStream
	payload   string // normalized data URI, barcode code, or query text
	selfLabel string

	source   MediaSource
	norm     *ImageNormalizer
	analyzer Analyzer
	labeler  LabelSuggester
}

func NewCaptureSession(source MediaSource, norm *ImageNormalizer, analyzer Analyzer, labeler LabelSuggester) *CaptureSession {
	return &CaptureSession{
		ID:        uuid.NewString(),
		createdAt: time.Now(),
		state:     StateIdle,
		source:    source,
		norm:      norm,
		analyzer:  analyzer,
		labeler:   labeler,
	}
}

// State returns the current state.
func (s *CaptureSession) State() CaptureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the selected capture mode ("" before SelectMode).
func (s *CaptureSession) Mode() CaptureMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Payload returns the pending normalized payload, if any.
func (s *CaptureSession) Payload() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}

// SelectMode picks (or switches) the capture mode. Switching discards
// any pending payload and self-label and releases a held stream.
func (s *CaptureSession) SelectMode(mode CaptureMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !mode.Valid() {
		return &CaptureError{Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	switch s.state {
	case StateSubmitting, StateClosed:
		return &CaptureError{Reason: fmt.Sprintf("cannot select mode in state %s", s.state)}
	}

	s.releaseStreamLocked()
	s.mode = mode
	s.payload = ""
	s.selfLabel = ""
	s.state = StateModeSelect
	return nil
}

// StartCamera acquires the exclusive media stream and goes live. Only
// camera-backed modes pass through here; barcode and text search never
// touch the stream.
func (s *CaptureSession) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateModeSelect {
		s.mu.Unlock()
		return &CaptureError{Reason: fmt.Sprintf("cannot start camera in state %s", s.state)}
	}
	if !s.mode.UsesCamera() {
		s.mu.Unlock()
		return &CaptureError{Reason: fmt.Sprintf("mode %s does not use the camera", s.mode)}
	}
	s.mu.Unlock()

	stream, err := s.source.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			// caller degrades to AttachUpload
			return ErrPermissionDenied
		}
		return &CaptureError{Reason: fmt.Sprintf("camera unavailable: %v", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateModeSelect {
		// session moved on while we were acquiring
		stream.Release()
		return &CaptureError{Reason: fmt.Sprintf("session left mode-select during acquire (now %s)", s.state)}
	}
	s.stream = stream
	s.state = StateCameraLive
	return nil
}

// CaptureFrame grabs a frame from the live stream, normalizes it and
// moves to preview. On a frame or encode failure the session stays
// live so the user can retry the shot.
func (s *CaptureSession) CaptureFrame(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCameraLive {
		s.mu.Unlock()
		return &CaptureError{Reason: fmt.Sprintf("cannot capture in state %s", s.state)}
	}
	stream := s.stream
	s.mu.Unlock()

	raw, err := stream.Frame(ctx)
	if err != nil {
		return &CaptureError{Reason: fmt.Sprintf("frame grab failed: %v", err)}
	}
	payload, err := s.norm.Normalize(raw)
	if err != nil {
		return err // EncodeError
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCameraLive {
		return &CaptureError{Reason: fmt.Sprintf("session left camera-live during capture (now %s)", s.state)}
	}
	s.payload = payload
	s.state = StateCapturedPreview
	return nil
}

// AttachUpload is the upload-from-file entry: same normalization, no
// camera. Valid from mode-select (including after permission denial)
// for any image mode.
func (s *CaptureSession) AttachUpload(raw []byte) error {
	s.mu.Lock()
	mode := s.mode
	state := s.state
	s.mu.Unlock()

	if state != StateModeSelect {
		return &CaptureError{Reason: fmt.Sprintf("cannot attach upload in state %s", state)}
	}
	if !mode.UsesCamera() {
		return &CaptureError{Reason: fmt.Sprintf("mode %s takes no image upload", mode)}
	}

	payload, err := s.norm.Normalize(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateModeSelect {
		return &CaptureError{Reason: fmt.Sprintf("session left mode-select during upload (now %s)", s.state)}
	}
	s.payload = payload
	s.state = StateCapturedPreview
	return nil
}

// AttachText feeds the camera-free modes: a decoded barcode or a
// free-text query goes straight to preview, pending submission.
func (s *CaptureSession) AttachText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateModeSelect {
		return &CaptureError{Reason: fmt.Sprintf("cannot attach text in state %s", s.state)}
	}
	if s.mode.UsesCamera() {
		return &CaptureError{Reason: fmt.Sprintf("mode %s needs an image, not text", s.mode)}
	}
	if text == "" {
		return &CaptureError{Reason: "empty input"}
	}
	s.payload = text
	s.state = StateCapturedPreview
	return nil
}

// Retake discards the pending payload. If the stream is still held we
// drop back to camera-live; otherwise to the upload entry point.
func (s *CaptureSession) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCapturedPreview && s.state != StateSelfLabeling {
		return &CaptureError{Reason: fmt.Sprintf("nothing to retake in state %s", s.state)}
	}
	s.payload = ""
	s.selfLabel = ""
	if s.stream != nil {
		s.state = StateCameraLive
	} else {
		s.state = StateModeSelect
	}
	return nil
}

// BeginSelfLabel enters the optional labeling detour from preview.
func (s *CaptureSession) BeginSelfLabel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCapturedPreview {
		return &CaptureError{Reason: fmt.Sprintf("cannot self-label in state %s", s.state)}
	}
	s.state = StateSelfLabeling
	return nil
}

// SuggestLabels asks the vision labeler for hints on the pending image.
// Best-effort: a labeler failure is returned but does not change state.
func (s *CaptureSession) SuggestLabels(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	payload := s.payload
	state := s.state
	s.mu.Unlock()

	if state != StateSelfLabeling {
		return nil, &CaptureError{Reason: fmt.Sprintf("no labeling in progress (state %s)", state)}
	}
	if s.labeler == nil {
		return nil, nil
	}
	return s.labeler.SuggestLabels(ctx, payload)
}

// SetSelfLabel attaches the free-text label and returns to preview.
func (s *CaptureSession) SetSelfLabel(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelfLabeling {
		return &CaptureError{Reason: fmt.Sprintf("cannot set label in state %s", s.state)}
	}
	s.selfLabel = label
	s.state = StateCapturedPreview
	return nil
}

// Submit routes the pending payload through the analyzer and closes the
// session on completion, success or failure. A result arriving after
// Close is discarded, never applied.
func (s *CaptureSession) Submit(ctx context.Context) (*AnalysisResult, error) {
	s.mu.Lock()
	if s.state != StateCapturedPreview {
		s.mu.Unlock()
		return nil, &CaptureError{Reason: fmt.Sprintf("cannot submit in state %s", s.state)}
	}
	s.releaseStreamLocked()
	s.state = StateSubmitting
	mode, payload, label := s.mode, s.payload, s.selfLabel
	s.mu.Unlock()

	result, err := s.analyzer.Route(ctx, mode, payload, label)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		// closed while the call was in flight; drop the result
		return nil, &CaptureError{Reason: "session closed during analysis"}
	}
	s.state = StateClosed
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close tears the session down from any state and releases a held
// stream. Idempotent.
func (s *CaptureSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseStreamLocked()
	s.payload = ""
	s.selfLabel = ""
	s.state = StateClosed
}

// caller must hold s.mu
func (s *CaptureSession) releaseStreamLocked() {
	if s.stream != nil {
		s.stream.Release()
		s.stream = nil
	}
}

// noCameraSource is the MediaSource for deployments with no device
// camera: acquisition reports permission denial so the flow degrades to
// the upload entry.
type noCameraSource struct{}

func NewNoCameraSource() MediaSource { return noCameraSource{} }

func (noCameraSource) Acquire(ctx context.Context) (MediaStream, error) {
	return nil, ErrPermissionDenied
}

// sessionTTL bounds how long an abandoned capture session stays in the
// registry before the next NewSession sweeps it out.
const sessionTTL = 30 * time.Minute

// CaptureService tracks live capture sessions by id for the HTTP
// surface.
type CaptureService struct {
	mu       sync.Mutex
	sessions map[string]*CaptureSession

	source   MediaSource
	norm     *ImageNormalizer
	analyzer Analyzer
	labeler  LabelSuggester

	ttl time.Duration
	now func() time.Time
}

func NewCaptureService(source MediaSource, norm *ImageNormalizer, analyzer Analyzer, labeler LabelSuggester) *CaptureService {
	return &CaptureService{
		sessions: make(map[string]*CaptureSession),
		source:   source,
		norm:     norm,
		analyzer: analyzer,
		labeler:  labeler,
		ttl:      sessionTTL,
		now:      time.Now,
	}
}

func (cs *CaptureService) NewSession() *CaptureSession {
	s := NewCaptureSession(cs.source, cs.norm, cs.analyzer, cs.labeler)
	cs.mu.Lock()
	cs.sweepLocked()
	cs.sessions[s.ID] = s
	cs.mu.Unlock()
	return s
}

// caller must hold cs.mu. Drops sessions past their TTL or already
// closed; Close releases any stream an abandoned session still holds.
func (cs *CaptureService) sweepLocked() {
	cutoff := cs.now().Add(-cs.ttl)
	for id, s := range cs.sessions {
		if s.createdAt.Before(cutoff) || s.State() == StateClosed {
			s.Close()
			delete(cs.sessions, id)
		}
	}
}

func (cs *CaptureService) Get(id string) (*CaptureSession, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.sessions[id]
	return s, ok
}

// CloseSession closes and forgets the session. Safe on unknown ids.
func (cs *CaptureService) CloseSession(id string) {
	cs.mu.Lock()
	s := cs.sessions[id]
	delete(cs.sessions, id)
	cs.mu.Unlock()
	if s != nil {
		s.Close()
	}
}
