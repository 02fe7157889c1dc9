// Package cli holds the pieces shared by the kindlechess commands: typed
// errors that map to exit codes, connection error classification, table
// output and the progress spinner.
//
// Commands return *AuthRequiredError when no token is stored and
// *AuthFailedError when the interactive login did not complete; cmd maps
// them to exit codes 2 and 3.
package cli
