package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// DirectoryServiceName is the fully-qualified name of the DirectoryService service.
const DirectoryServiceName = "splitledger.v1.DirectoryService"

// Procedure paths of the DirectoryService RPCs.
const (
	DirectoryServiceCreateUserProcedure  = "/splitledger.v1.DirectoryService/CreateUser"
	DirectoryServiceGetUserProcedure     = "/splitledger.v1.DirectoryService/GetUser"
	DirectoryServiceListUsersProcedure   = "/splitledger.v1.DirectoryService/ListUsers"
	DirectoryServiceCreateGroupProcedure = "/splitledger.v1.DirectoryService/CreateGroup"
	DirectoryServiceGetGroupProcedure    = "/splitledger.v1.DirectoryService/GetGroup"
	DirectoryServiceListGroupsProcedure  = "/splitledger.v1.DirectoryService/ListGroups"
)

// DirectoryServiceClient is a client for the splitledger.v1.DirectoryService service.
type DirectoryServiceClient interface {
	CreateUser(context.Context, *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error)
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
}

// NewDirectoryServiceClient constructs a client for the DirectoryService.
func NewDirectoryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DirectoryServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &directoryServiceClient{
		createUser:  connect.NewClient[CreateUserRequest, CreateUserResponse](httpClient, baseURL+DirectoryServiceCreateUserProcedure, opts...),
		getUser:     connect.NewClient[GetUserRequest, GetUserResponse](httpClient, baseURL+DirectoryServiceGetUserProcedure, opts...),
		listUsers:   connect.NewClient[ListUsersRequest, ListUsersResponse](httpClient, baseURL+DirectoryServiceListUsersProcedure, opts...),
		createGroup: connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+DirectoryServiceCreateGroupProcedure, opts...),
		getGroup:    connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+DirectoryServiceGetGroupProcedure, opts...),
		listGroups:  connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+DirectoryServiceListGroupsProcedure, opts...),
	}
}

type directoryServiceClient struct {
	createUser  *connect.Client[CreateUserRequest, CreateUserResponse]
	getUser     *connect.Client[GetUserRequest, GetUserResponse]
	listUsers   *connect.Client[ListUsersRequest, ListUsersResponse]
	createGroup *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup    *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups  *connect.Client[ListGroupsRequest, ListGroupsResponse]
}

func (c *directoryServiceClient) CreateUser(ctx context.Context, req *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *directoryServiceClient) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *directoryServiceClient) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *directoryServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *directoryServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *directoryServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

// DirectoryServiceHandler is implemented by servers of the DirectoryService.
type DirectoryServiceHandler interface {
	CreateUser(context.Context, *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error)
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
}

// NewDirectoryServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewDirectoryServiceHandler(svc DirectoryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	createUser := connect.NewUnaryHandler(DirectoryServiceCreateUserProcedure, svc.CreateUser, opts...)
	getUser := connect.NewUnaryHandler(DirectoryServiceGetUserProcedure, svc.GetUser, opts...)
	listUsers := connect.NewUnaryHandler(DirectoryServiceListUsersProcedure, svc.ListUsers, opts...)
	createGroup := connect.NewUnaryHandler(DirectoryServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	getGroup := connect.NewUnaryHandler(DirectoryServiceGetGroupProcedure, svc.GetGroup, opts...)
	listGroups := connect.NewUnaryHandler(DirectoryServiceListGroupsProcedure, svc.ListGroups, opts...)

	return "/" + DirectoryServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case DirectoryServiceCreateUserProcedure:
			createUser.ServeHTTP(w, r)
		case DirectoryServiceGetUserProcedure:
			getUser.ServeHTTP(w, r)
		case DirectoryServiceListUsersProcedure:
			listUsers.ServeHTTP(w, r)
		case DirectoryServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case DirectoryServiceGetGroupProcedure:
			getGroup.ServeHTTP(w, r)
		case DirectoryServiceListGroupsProcedure:
			listGroups.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedDirectoryServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedDirectoryServiceHandler struct{}

func (UnimplementedDirectoryServiceHandler) CreateUser(context.Context, *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.CreateUser is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.GetUser is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.ListUsers is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.CreateGroup is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.GetGroup is not implemented"))
}

func (UnimplementedDirectoryServiceHandler) ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.DirectoryService.ListGroups is not implemented"))
}
