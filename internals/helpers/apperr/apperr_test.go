package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromClassifiesStoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"not found", errors.Wrap(gorm.ErrRecordNotFound, "load invoice"), KindNotFound, http.StatusNotFound},
		{"duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), KindConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), KindInternal, http.StatusInternalServerError},
		{"already typed", errors.WithMessage(Validation("total is required"), "create"), KindValidation, http.StatusBadRequest},
		{"upstream", Upstream("gateway rejected", map[string]any{"status_code": "400"}, nil), KindUpstream, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.status, got.Status())
		})
	}
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestIs(t *testing.T) {
	err := errors.Wrap(Conflict("invoice is already paid"), "record payment")
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindConflict))
}
