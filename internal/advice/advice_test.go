package advice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/storeledger/internal/advice"
)

const clientID = "client-0123456789"

func testConfig() advice.Config {
	return advice.Config{
		MinClientIDLen:  10,
		MaxPayloadBytes: 5000,
		MaxQueryChars:   500,
		CacheTTL:        time.Hour,
		CacheMaxEntries: 100,
		Timeout:         time.Second,
	}
}

func TestService_Advise(t *testing.T) {
	type testCase struct {
		name       string
		clientID   string
		payload    string
		setupMock  func(m *advice.MockAdvisor)
		wantAnswer string
		wantErr    error
	}

	tests := []testCase{
		{
			name:     "Success",
			clientID: clientID,
			payload:  `{"state":{"products":[]},"userQuery":"¿Qué repongo?"}`,
			setupMock: func(m *advice.MockAdvisor) {
				m.EXPECT().
					Advise(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, instructions, prompt string) (string, error) {
						assert.Contains(t, instructions, "español rioplatense")
						assert.Contains(t, prompt, `"products": []`)
						assert.Contains(t, prompt, "¿Qué repongo?")

						return "Reponé lácteos.", nil
					})
			},
			wantAnswer: "Reponé lácteos.",
		},
		{
			name:     "DefaultQuery",
			clientID: clientID,
			payload:  `{"state":null}`,
			setupMock: func(m *advice.MockAdvisor) {
				m.EXPECT().
					Advise(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _, prompt string) (string, error) {
						assert.Contains(t, prompt, advice.DefaultQuery)
						assert.Contains(t, prompt, "{}")

						return "ok", nil
					})
			},
			wantAnswer: "ok",
		},
		{
			name:      "ShortClientID",
			clientID:  "abc",
			payload:   `{}`,
			setupMock: func(m *advice.MockAdvisor) {},
			wantErr:   advice.ErrMissingClientID,
		},
		{
			name:      "TooLarge",
			clientID:  clientID,
			payload:   `{"userQuery":"` + strings.Repeat("a", 5000) + `"}`,
			setupMock: func(m *advice.MockAdvisor) {},
			wantErr:   advice.ErrPayloadTooLarge,
		},
		{
			name:      "InvalidJSON",
			clientID:  clientID,
			payload:   `{"state":`,
			setupMock: func(m *advice.MockAdvisor) {},
			wantErr:   advice.ErrInvalidPayload,
		},
		{
			name:     "UpstreamFailure",
			clientID: clientID,
			payload:  `{}`,
			setupMock: func(m *advice.MockAdvisor) {
				m.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("rate limited"))
			},
			wantErr: advice.ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockAdvisor := advice.NewMockAdvisor(ctrl)
			tt.setupMock(mockAdvisor)

			svc := advice.NewService(mockAdvisor, testConfig())
			resp, err := svc.Advise(context.Background(), tt.clientID, []byte(tt.payload))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAnswer, resp.Answer)
		})
	}
}

func TestService_Advise_TruncatesQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAdvisor := advice.NewMockAdvisor(ctrl)
	mockAdvisor.EXPECT().
		Advise(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, prompt string) (string, error) {
			assert.Contains(t, prompt, strings.Repeat("ñ", 500))
			assert.NotContains(t, prompt, strings.Repeat("ñ", 501))

			return "ok", nil
		})

	svc := advice.NewService(mockAdvisor, testConfig())

	// 600 two-byte runes stay under the byte cap but exceed the query limit.
	payload := `{"userQuery":"` + strings.Repeat("ñ", 600) + `"}`

	_, err := svc.Advise(context.Background(), clientID, []byte(payload))
	require.NoError(t, err)
}

func TestService_Advise_CachesIdenticalPayloads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAdvisor := advice.NewMockAdvisor(ctrl)
	mockAdvisor.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("first", nil).Times(1)
	mockAdvisor.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("second", nil).Times(1)

	svc := advice.NewService(mockAdvisor, testConfig())
	ctx := context.Background()

	payload := []byte(`{"userQuery":"hola"}`)

	first, err := svc.Advise(ctx, clientID, payload)
	require.NoError(t, err)

	again, err := svc.Advise(ctx, "another-client-id", payload)
	require.NoError(t, err)
	assert.Equal(t, first.Answer, again.Answer)

	other, err := svc.Advise(ctx, clientID, []byte(`{"userQuery":"chau"}`))
	require.NoError(t, err)
	assert.Equal(t, "second", other.Answer)
}

func TestService_Advise_CacheIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAdvisor := advice.NewMockAdvisor(ctrl)
	mockAdvisor.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("answer", nil).Times(3)

	cfg := testConfig()
	cfg.CacheMaxEntries = 1

	svc := advice.NewService(mockAdvisor, cfg)
	ctx := context.Background()

	for _, payload := range []string{`{"userQuery":"uno"}`, `{"userQuery":"dos"}`, `{"userQuery":"uno"}`} {
		_, err := svc.Advise(ctx, clientID, []byte(payload))
		require.NoError(t, err)
	}
}

func TestService_Advise_FailuresAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAdvisor := advice.NewMockAdvisor(ctrl)
	gomock.InOrder(
		mockAdvisor.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("timeout")),
		mockAdvisor.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil),
	)

	svc := advice.NewService(mockAdvisor, testConfig())
	payload := []byte(`{}`)

	_, err := svc.Advise(context.Background(), clientID, payload)
	require.Error(t, err)

	resp, err := svc.Advise(context.Background(), clientID, payload)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)
}

func TestService_Advise_AppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAdvisor := advice.NewMockAdvisor(ctrl)
	mockAdvisor.EXPECT().
		Advise(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)

			return "ok", nil
		})

	svc := advice.NewService(mockAdvisor, testConfig())

	_, err := svc.Advise(context.Background(), clientID, []byte(`{}`))
	require.NoError(t, err)
}
