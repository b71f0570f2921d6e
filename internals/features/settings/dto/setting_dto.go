package dto

import (
	"time"

	"schoolportal_backend/internals/features/settings/model"
)

const maskedValue = "********"

type UpsertSettingRequest struct {
	Key   string `json:"key" validate:"required,max=120"`
	Value string `json:"value"`
}

// UpsertSettingsRequest accepts either a single pair or a batch.
type UpsertSettingsRequest struct {
	Key      string            `json:"key" validate:"omitempty,max=120"`
	Value    string            `json:"value"`
	Settings map[string]string `json:"settings"`
}

func (r UpsertSettingsRequest) Pairs() map[string]string {
	out := make(map[string]string, len(r.Settings)+1)
	for k, v := range r.Settings {
		out[k] = v
	}
	if r.Key != "" {
		out[r.Key] = r.Value
	}
	return out
}

type SettingResponse struct {
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	Masked    bool       `json:"masked,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func FromModel(m model.SettingModel) SettingResponse {
	out := SettingResponse{Key: m.SettingKey, Value: m.SettingValue}
	if !m.SettingUpdatedAt.IsZero() {
		t := m.SettingUpdatedAt
		out.UpdatedAt = &t
	}
	if model.IsSecret(m.SettingKey) && m.SettingValue != "" {
		out.Value = mask(m.SettingValue)
		out.Masked = true
	}
	return out
}

func FromModels(rows []model.SettingModel) []SettingResponse {
	out := make([]SettingResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, FromModel(m))
	}
	return out
}

// mask keeps the last 4 characters of long secrets.
func mask(v string) string {
	if len(v) <= 8 {
		return maskedValue
	}
	return maskedValue + v[len(v)-4:]
}
