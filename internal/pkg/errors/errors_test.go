package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"curbfinder/internal/domain/entities"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "invalid position code",
			err:        eris.Wrap(eris.Wrap(entities.ErrInvalidPositionCode, "empty geohash"), "decode address"),
			wantCode:   "INVALID_POSITION_CODE",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed record",
			err:        eris.Wrap(entities.ErrMalformedRecord, "update curb"),
			wantCode:   "MALFORMED_RECORD",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "malformed record inside a joined error",
			err:        stderrors.Join(eris.Wrapf(entities.ErrMalformedRecord, "record %d", 3)),
			wantCode:   "MALFORMED_RECORD",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid radius",
			err:        eris.Wrap(entities.ErrInvalidRadius, "cover search radius"),
			wantCode:   "INVALID_RADIUS",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "coverage too large",
			err:        eris.Wrap(entities.ErrCoverageTooLarge, "cover search radius"),
			wantCode:   "COVERAGE_TOO_LARGE",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "app error passes through",
			err:        ErrInvalidRequest,
			wantCode:   "INVALID_REQUEST",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown error",
			err:        stderrors.New("disk on fire"),
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
		})
	}
}

func TestFromDomain_KeepsCatalogueUntouched(t *testing.T) {
	appErr := FromDomain(eris.Wrap(entities.ErrInvalidRadius, "radius -1"))

	assert.Contains(t, appErr.Details["reason"], "radius -1")
	assert.NotSame(t, ErrInvalidRadius, appErr)
	assert.Empty(t, ErrInvalidRadius.Details)
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "INVALID_RADIUS: Invalid radius value", ErrInvalidRadius.Error())
}
