package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerificationService struct{ mock.Mock }

func (m *mockVerificationService) SendVerificationCode(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockVerificationService) VerifyCode(ctx context.Context, email, code string, purpose domain.Purpose) (string, error) {
	args := m.Called(ctx, email, code, purpose)
	return args.String(0), args.Error(1)
}
func (m *mockVerificationService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockVerificationService) FinalizePasswordReset(ctx context.Context, email, resetToken, newPassword string) error {
	return m.Called(ctx, email, resetToken, newPassword).Error(0)
}

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestSendCode_Success(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("SendVerificationCode", mock.Anything, "a@x.com").Return(nil)
	h := NewVerificationHandler(svc)

	rr := post(t, h.SendCode, `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env EmailEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "a@x.com", env.Email)
}

func TestSendCode_MissingEmail(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationService{})
	rr := post(t, h.SendCode, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendCode_BadBody(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationService{})
	rr := post(t, h.SendCode, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendCode_DispatchFailure_Returns500(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("SendVerificationCode", mock.Anything, "a@x.com").Return(domain.ErrDispatch)
	h := NewVerificationHandler(svc)

	rr := post(t, h.SendCode, `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestVerifyCode_DefaultPurpose_Success(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("VerifyCode", mock.Anything, "a@x.com", "123456", domain.PurposeVerification).Return("", nil)
	h := NewVerificationHandler(svc)

	rr := post(t, h.VerifyCode, `{"email":"a@x.com","code":"123456"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "code verified", env.Message)
}

func TestVerifyCode_PasswordReset_ReturnsToken(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("VerifyCode", mock.Anything, "a@x.com", "123456", domain.PurposePasswordReset).Return("reset-token", nil)
	h := NewVerificationHandler(svc)

	rr := post(t, h.VerifyCode, `{"email":"a@x.com","code":"123456","purpose":"password-reset"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env ResetTokenEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "reset-token", env.ResetToken)
}

func TestVerifyCode_InvalidCode_GenericMessage(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("VerifyCode", mock.Anything, "a@x.com", "000000", domain.PurposeVerification).Return("", domain.ErrCodeInvalid)
	h := NewVerificationHandler(svc)

	rr := post(t, h.VerifyCode, `{"email":"a@x.com","code":"000000"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "invalid or expired code", env.Error)
}

func TestVerifyCode_UnknownPurpose(t *testing.T) {
	h := NewVerificationHandler(&mockVerificationService{})
	rr := post(t, h.VerifyCode, `{"email":"a@x.com","code":"123456","purpose":"sms"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
