package model

import "time"

const (
	KeyGatewayAccessToken = "gateway_access_token"
)

// secret keys are masked on every read endpoint
var secretKeys = map[string]struct{}{
	KeyGatewayAccessToken: {},
}

type SettingModel struct {
	SettingKey       string    `gorm:"column:setting_key;type:varchar(120);primaryKey" json:"key"`
	SettingValue     string    `gorm:"column:setting_value;type:text;not null" json:"value"`
	SettingUpdatedAt time.Time `gorm:"column:setting_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SettingModel) TableName() string { return "settings" }

func IsSecret(key string) bool {
	_, ok := secretKeys[key]
	return ok
}
