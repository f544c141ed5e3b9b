package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/placementboard/backend/internal/models"
)

func TestAccessGate_Authorize(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		owner     string
		admin     bool
		company   bool
		wantKind  ErrorKind
	}{
		{name: "self", principal: "u1", owner: "u1"},
		{name: "admin", principal: "u1", owner: "u2", admin: true},
		{name: "company owner", principal: "u1", owner: "c1", company: true},
		{name: "stranger", principal: "u1", owner: "u2", wantKind: KindPermissionDenied},
		{name: "anonymous", principal: "", owner: "u2", wantKind: KindPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := new(MockIdentityDirectory)
			companies := new(MockCompanyDirectory)
			identity.On("IsAdmin", mock.Anything, tt.principal).Return(tt.admin, nil).Maybe()
			companies.On("IsCompanyOwner", mock.Anything, tt.owner, tt.principal).Return(tt.company, nil).Maybe()

			gate := NewAccessGate(identity, companies, zerolog.Nop())
			err := gate.Authorize(context.Background(), models.Principal{ID: tt.principal}, tt.owner)

			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsKind(err, tt.wantKind))
		})
	}
}

func TestAccessGate_LookupFailure(t *testing.T) {
	identity := new(MockIdentityDirectory)
	companies := new(MockCompanyDirectory)
	identity.On("IsAdmin", mock.Anything, "u1").Return(false, errors.New("timeout"))

	gate := NewAccessGate(identity, companies, zerolog.Nop())

	err := gate.Authorize(context.Background(), models.Principal{ID: "u1"}, "u2")
	assert.Equal(t, KindStoreFailure, KindOf(err))

	err = gate.RequireAdmin(context.Background(), models.Principal{ID: "u1"})
	assert.Equal(t, KindStoreFailure, KindOf(err))
	companies.AssertNotCalled(t, "IsCompanyOwner", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessGate_SelfSkipsLookups(t *testing.T) {
	identity := new(MockIdentityDirectory)
	companies := new(MockCompanyDirectory)

	gate := NewAccessGate(identity, companies, zerolog.Nop())
	assert.NoError(t, gate.Authorize(context.Background(), models.Principal{ID: "u1"}, "u1"))
	identity.AssertNotCalled(t, "IsAdmin", mock.Anything, mock.Anything)
}
