package catalog

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	conceptModel "schoolportal_backend/internals/features/finance/concepts/model"
	directoryModel "schoolportal_backend/internals/features/school/directory/model"
)

type LevelSeed struct {
	Name   string   `json:"name"`
	Grades []string `json:"grades"`
}

type ConceptSeed struct {
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	Level          string          `json:"level"`
	DurationMonths *int            `json:"durationMonths"`
}

type CatalogSeed struct {
	Levels   []LevelSeed   `json:"levels"`
	Concepts []ConceptSeed `json:"concepts"`
}

// SeedCatalog inserts levels, grades and payment concepts. Rows that already
// exist (by name) are skipped, so it can run on every deploy.
func SeedCatalog(ctx context.Context, db *gorm.DB, raw []byte, log *zap.Logger) error {
	var seed CatalogSeed
	if err := sonic.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "decode catalog seed")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levelIDs := map[string]int64{}
		for _, l := range seed.Levels {
			level := directoryModel.LevelModel{LevelName: l.Name}
			if err := tx.Where("level_name = ?", l.Name).FirstOrCreate(&level).Error; err != nil {
				return errors.Wrapf(err, "seed level %q", l.Name)
			}
			levelIDs[l.Name] = level.LevelID

			for _, g := range l.Grades {
				grade := directoryModel.GradeModel{GradeLevelID: level.LevelID, GradeName: g}
				if err := tx.Where("grade_level_id = ? AND grade_name = ?", level.LevelID, g).
					FirstOrCreate(&grade).Error; err != nil {
					return errors.Wrapf(err, "seed grade %q/%q", l.Name, g)
				}
			}
		}

		for _, c := range seed.Concepts {
			typ := conceptModel.ConceptType(c.Type)
			if !typ.Valid() {
				return errors.Errorf("concept %q: unknown type %q", c.Name, c.Type)
			}
			var n int64
			if err := tx.Model(&conceptModel.PaymentConceptModel{}).
				Where("payment_concept_name = ?", c.Name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				log.Debug("concept exists, skipped", zap.String("name", c.Name))
				continue
			}

			m := conceptModel.PaymentConceptModel{
				PaymentConceptName:           c.Name,
				PaymentConceptDescription:    c.Description,
				PaymentConceptAmount:         c.Amount,
				PaymentConceptType:           typ,
				PaymentConceptDurationMonths: c.DurationMonths,
				PaymentConceptIsActive:       true,
			}
			if c.Level != "" {
				id, ok := levelIDs[c.Level]
				if !ok {
					return errors.Errorf("concept %q: level %q not in seed", c.Name, c.Level)
				}
				m.PaymentConceptLevelID = &id
			}
			if err := tx.Create(&m).Error; err != nil {
				return errors.Wrapf(err, "seed concept %q", c.Name)
			}
		}

		log.Info("catalog seeded", zap.Int("levels", len(seed.Levels)), zap.Int("concepts", len(seed.Concepts)))
		return nil
	})
}
