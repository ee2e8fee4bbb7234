package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrAccountPending       = errors.New("account is pending approval")
	ErrAccountRejected      = errors.New("account has been rejected")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrVideoNotFound        = errors.New("video not found")
	ErrBlobMissing          = errors.New("video file data is missing or corrupted")
	ErrAnalysisRequired     = errors.New("video must be analyzed first")
	ErrMalformedAnalysis    = errors.New("analysis reply contained no valid JSON")
	ErrGatewayFailure       = errors.New("inference gateway call failed")
	ErrPersonalityNotFound  = errors.New("personality not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrFeedbackRequired     = errors.New("rejection requires feedback")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotApproved          = errors.New("personality is not approved")
)
