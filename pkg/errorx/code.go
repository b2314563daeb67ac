package errorx

type Code int

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Acquisition codes
	InvalidURL        Code = 200001
	RateLimitExceeded Code = 200002
	AuthExpired       Code = 200003
	TransientProvider Code = 200004
	PermanentProvider Code = 200005

	// Draw codes
	InsufficientCredits Code = 300001
	AlreadyExecuted     Code = 300002
)
