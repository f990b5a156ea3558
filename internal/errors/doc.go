// Package errors provides structured error handling for the bot.
//
// Every error carries a Code so callers can branch on the failure class
// without string matching, and handlers can convert any error into a
// user-facing message with GetMessage. The code set mirrors the failure
// taxonomy of the game commands:
//
//   - CodeUnavailable: the skill catalog has not loaded yet
//   - CodeNotFound: missing skill, progress record, or duel target
//   - CodeDeadlineExceeded: no reaction or reply arrived in time
//   - CodeFailedPrecondition: not enough skill points or energy
//
// plus the usual InvalidArgument / AlreadyExists / Internal for validation
// and storage failures. Use the constructor helpers (NotFound, Wrapf, ...)
// rather than building Error values by hand.
package errors
