package models

import (
	"time"

	"gorm.io/gorm"
)

// HealthMetrics is the per-user, per-day vitals record fed by
// vitals-screenshot captures. One row per (user, date).
type HealthMetrics struct {
	gorm.Model
	UserID       uint      `gorm:"index"`
	Date         time.Time `gorm:"index"`
	WeightKg     float64
	SystolicBP   float64
	DiastolicBP  float64
	HeartRateBPM float64
	GlucoseMgDl  float64
	Steps        float64
	SleepHours   float64
}

// HealthMetricsPatch is the partial record vitals analysis returns.
// Nil fields were not visible in the screenshot and must not overwrite
// stored values.
type HealthMetricsPatch struct {
	WeightKg     *float64 `json:"weight_kg,omitempty"`
	SystolicBP   *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP  *float64 `json:"diastolic_bp,omitempty"`
	HeartRateBPM *float64 `json:"heart_rate_bpm,omitempty"`
	GlucoseMgDl  *float64 `json:"glucose_mg_dl,omitempty"`
	Steps        *float64 `json:"steps,omitempty"`
	SleepHours   *float64 `json:"sleep_hours,omitempty"`
}

// Apply merges the patch into the stored record, skipping nil fields.
func (p *HealthMetricsPatch) Apply(m *HealthMetrics) {
	if p.WeightKg != nil {
		m.WeightKg = *p.WeightKg
	}
	if p.SystolicBP != nil {
		m.SystolicBP = *p.SystolicBP
	}
	if p.DiastolicBP != nil {
		m.DiastolicBP = *p.DiastolicBP
	}
	if p.HeartRateBPM != nil {
		m.HeartRateBPM = *p.HeartRateBPM
	}
	if p.GlucoseMgDl != nil {
		m.GlucoseMgDl = *p.GlucoseMgDl
	}
	if p.Steps != nil {
		m.Steps = *p.Steps
	}
	if p.SleepHours != nil {
		m.SleepHours = *p.SleepHours
	}
}
