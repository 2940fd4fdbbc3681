package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// ドメインエラーの種類。Handlerがそのままステータスに変換する
type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION_ERROR"
	KindAuthentication ErrorKind = "AUTHENTICATION_ERROR"
	KindAuthorization  ErrorKind = "AUTHORIZATION_ERROR"
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindConflict       ErrorKind = "CONFLICT"
	KindInternal       ErrorKind = "INTERNAL"
)

// 種類＋対象リソース＋メッセージを1つのタグ付きエラーで持つ。
// 権限エラーのメッセージはリソースの存在を漏らさない固定文言にする
type DomainError struct {
	Kind     ErrorKind
	Resource string
	Message  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Resource, e.Message)
}

func (e *DomainError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(resource, message string) error {
	return &DomainError{Kind: KindValidation, Resource: resource, Message: message}
}

// 認証失敗。ログインの失敗理由は呼び出し側で固定文言にする
func NewAuthenticationError(message string) error {
	return &DomainError{Kind: KindAuthentication, Resource: "auth", Message: message}
}

// 文言は常に"forbidden"。存在の有無を見せない
func NewAuthorizationError(resource string) error {
	return &DomainError{Kind: KindAuthorization, Resource: resource, Message: "forbidden"}
}

func NewNotFoundError(resource string) error {
	return &DomainError{Kind: KindNotFound, Resource: resource, Message: resource + " not found"}
}

func NewConflictError(resource, message string) error {
	return &DomainError{Kind: KindConflict, Resource: resource, Message: message}
}

func NewInternalError() error {
	return &DomainError{Kind: KindInternal, Resource: "", Message: "internal error"}
}

func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
