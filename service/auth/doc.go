// Package auth implements phone-number sign in, sign up and sign out.
//
// Successful logins and signups populate the session store; Logout always
// clears it, even when the server cannot be reached. Inputs are normalized
// (phone formatting characters are stripped) and validated before any
// request is sent, so malformed input surfaces as validator.ValidationErrors.
package auth
