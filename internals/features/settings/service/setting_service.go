package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"schoolportal_backend/internals/databases"
	"schoolportal_backend/internals/features/settings/model"
	"schoolportal_backend/internals/helpers/apperr"
)

type SettingService struct {
	gw *databases.Gateway
}

func NewSettingService(gw *databases.Gateway) *SettingService {
	return &SettingService{gw: gw}
}

// Get returns the value for key; ok is false when the key was never written.
func (s *SettingService) Get(ctx context.Context, key string) (string, bool, error) {
	var m model.SettingModel
	found, err := s.gw.FetchOne(ctx, &m,
		`SELECT setting_key, setting_value, setting_updated_at FROM settings WHERE setting_key = ?`, key)
	if err != nil {
		return "", false, errors.Wrapf(err, "get setting %q", key)
	}
	if !found {
		return "", false, nil
	}
	return m.SettingValue, true, nil
}

func (s *SettingService) All(ctx context.Context) ([]model.SettingModel, error) {
	var rows []model.SettingModel
	if err := s.gw.FetchMany(ctx, &rows,
		`SELECT setting_key, setting_value, setting_updated_at FROM settings ORDER BY setting_key`); err != nil {
		return nil, errors.Wrap(err, "list settings")
	}
	return rows, nil
}

// Upsert creates the key or replaces its value.
func (s *SettingService) Upsert(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.Validation("key is required")
	}
	return upsert(ctx, s.gw, key, value)
}

// UpsertMany writes every pair in one transaction.
func (s *SettingService) UpsertMany(ctx context.Context, kv map[string]string) error {
	if len(kv) == 0 {
		return apperr.Validation("no settings given")
	}
	for k := range kv {
		if strings.TrimSpace(k) == "" {
			return apperr.Validation("key is required")
		}
	}
	return s.gw.Transaction(ctx, func(tx *databases.Gateway) error {
		for k, v := range kv {
			if err := upsert(ctx, tx, strings.TrimSpace(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, gw *databases.Gateway, key, value string) error {
	m := model.SettingModel{SettingKey: key, SettingValue: value}
	err := gw.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "setting_updated_at"}),
	}).Create(&m).Error
	return errors.Wrapf(err, "upsert setting %q", key)
}
