package apierror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidRequest
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}

// Messages surfaced to clients.
const (
	MsgNoCart            = "User does not have a cart"
	MsgNoCartForUpdate   = "User does not have a cart. Use POST to create cart and add a product"
	MsgProductNotInDB    = "Product doesn't exist in database"
	MsgProductInCart     = "Product already in cart. Use the cart sidebar to update or remove product from cart"
	MsgProductNotInCart  = "Product not in cart"
	MsgEmptyCart         = "Cart does not have any products"
	MsgDefaultAddress    = "User does not have an address other than the default address"
	MsgInsufficientFunds = "Insufficient Wallet Balance"
	MsgQuantityTooLow    = "Quantity must be at least 1"
	MsgInternal          = "Internal Server Error"
	MsgUserNotFound      = "User not found"
	MsgEmailTaken        = "Email already taken"
	MsgBadCredentials    = "Incorrect email or password"
	MsgPleaseAuth        = "Please authenticate"
)

// Error is the only error type the service layer lets out.
type Error struct {
	Kind    Kind
	Message string
	// HTTPStatus overrides the status derived from Kind when non-zero.
	HTTPStatus int
}

func (e *Error) Error() string {
	return e.Message
}

// Status maps the error kind onto an HTTP status code.
func (e *Error) Status() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InvalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Internal() *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal}
}

// Wrap passes taxonomy errors through and turns anything else into Internal.
// The original cause is dropped; callers log it before wrapping.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
