package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	RequestIDCtxKey ContextKey = "requestID"
	MyInfoCtx       ContextKey = "myInfo"
	UserInfoCtx     ContextKey = "userInfo"
	ProjectCtx      ContextKey = "project"
	ClientCtx       ContextKey = "client"
	OperationCtx    ContextKey = "operation"
)
