package models

import "errors"

var (
	// ErrNotLoggedIn is returned when an operation requires a session
	// token and none is stored. The caller should redirect to login.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidCredentials is returned when the server rejects a
	// name/password pair.
	ErrInvalidCredentials = errors.New("invalid name or password")

	// ErrEmptyPlate is returned when the driver submits the plate field
	// without entering a plate number.
	ErrEmptyPlate = errors.New("plate number is empty")

	// ErrNoDestination is returned when a submission is attempted while
	// the destination selector is still on the placeholder entry.
	ErrNoDestination = errors.New("no destination selected")

	// ErrInvalidDate is returned when the delivery date does not parse
	// as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid delivery date")

	// ErrPermissionDenied is returned when foreground location
	// permission has not been granted.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnstableFix is returned when the freshest fix is worse than the
	// accuracy threshold. The driver should wait and press the action
	// button again; a low-quality fix is never submitted.
	ErrUnstableFix = errors.New("GPS fix not stable yet")

	// ErrLocationUnavailable is returned when a submission requires a
	// location and none could be acquired. No network call is made.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrRequestFailed covers every remote failure mode of a submission:
	// unreachable server, timeout, non-2xx response. The client does not
	// distinguish transient from permanent failures and never retries on
	// its own; retry is the driver pressing the button again.
	ErrRequestFailed = errors.New("request failed")

	// ErrStatusAlreadySent is returned when a field that is already
	// confirmed sent is submitted again.
	ErrStatusAlreadySent = errors.New("status already sent")
)
