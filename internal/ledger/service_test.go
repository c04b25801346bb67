package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/chinedu-obi/medibill/internal/ledger"
)

func TestService_Get(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *ledger.MockRepository, id uuid.UUID)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *ledger.MockRepository, id uuid.UUID) {
				m.EXPECT().
					GetEntry(gomock.Any(), id).
					Return(&ledger.Entry{
						ID:        id,
						PatientID: "PT-001",
						Type:      ledger.TypePayment,
						Method:    ledger.MethodCash,
						Status:    ledger.StatusCompleted,
						Amount:    5000,
						Reference: "CASH-1",
						CreatedAt: time.Now(),
					}, nil)
			},
		},
		{
			name: "NotFound",
			setupMock: func(m *ledger.MockRepository, id uuid.UUID) {
				m.EXPECT().
					GetEntry(gomock.Any(), id).
					Return(nil, ledger.ErrNotFound)
			},
			wantErr: ledger.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo, id)

			svc := ledger.NewService(repo)
			got, err := svc.Get(context.Background(), id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	method := ledger.MethodTransfer
	filter := ledger.ListFilter{Method: &method}

	repo.EXPECT().
		ListEntries(gomock.Any(), filter).
		Return([]*ledger.Entry{{Reference: "TRF-1"}, {Reference: "TRF-2"}}, nil)

	entries, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestService_MarkFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)
	id := uuid.New()

	repo.EXPECT().
		MarkFailed(gomock.Any(), id, "bank declined").
		Return(nil)

	require.NoError(t, svc.MarkFailed(context.Background(), id, "bank declined"))

	repo.EXPECT().
		MarkFailed(gomock.Any(), id, "late").
		Return(ledger.ErrNotPending)

	assert.ErrorIs(t, svc.MarkFailed(context.Background(), id, "late"), ledger.ErrNotPending)

	repo.EXPECT().
		ListByInvoice(gomock.Any(), id).
		Return(nil, errors.New("db down"))

	_, err := svc.ListByInvoice(context.Background(), id)
	assert.Error(t, err)
}
