package databases

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	conceptModel "schoolportal_backend/internals/features/finance/concepts/model"
	gatewayModel "schoolportal_backend/internals/features/finance/gateway/model"
	invoiceModel "schoolportal_backend/internals/features/finance/invoices/model"
	paymentModel "schoolportal_backend/internals/features/finance/payments/model"
	directoryModel "schoolportal_backend/internals/features/school/directory/model"
	settingModel "schoolportal_backend/internals/features/settings/model"
	authModel "schoolportal_backend/internals/features/users/auth/model"
)

// Models lists every table owned by the portal, in dependency order.
func Models() []any {
	return []any{
		&directoryModel.LevelModel{},
		&directoryModel.GradeModel{},
		&directoryModel.ParentModel{},
		&directoryModel.StudentModel{},
		&conceptModel.PaymentConceptModel{},
		&invoiceModel.InvoiceModel{},
		&invoiceModel.InvoiceItemModel{},
		&paymentModel.PaymentModel{},
		&gatewayModel.GatewayEventModel{},
		&settingModel.SettingModel{},
		&authModel.UserModel{},
		&authModel.TokenBlacklist{},
	}
}

// Migrate creates or alters tables to match the models. Columns are never dropped.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	log.Info("schema migrated", zap.Int("tables", len(models)))
	return nil
}
