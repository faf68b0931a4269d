// Package user manages the signed-in account and other users' profiles.
//
// Calls go through the authenticated gateway client, so an expired
// credential is refreshed transparently. Responses describing the signed-in
// user are merged into the session store. DeleteAccount clears the session
// after the server confirms the deletion.
package user
