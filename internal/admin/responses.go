// Package admin holds the wire types shared by the back-office callables.
package admin

// DeleteAccountRequest is the body of the deleteUserAccount callable.
type DeleteAccountRequest struct {
	UID string `json:"uid"`
}

// DeleteAccountResponse confirms which account was removed.
type DeleteAccountResponse struct {
	Success bool   `json:"success"`
	UID     string `json:"uid"`
}

// CallableError is the error body of a callable. Status is one of the
// callable status names such as "permission_denied".
type CallableError struct {
	Status  string `json:"error"`
	Message string `json:"error_description,omitempty"`
}
