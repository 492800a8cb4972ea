package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// DirectoryService implements the Connect DirectoryService
type DirectoryService struct {
	api.UnimplementedDirectoryServiceHandler
	store storage.Directory
}

// NewDirectoryService creates a new DirectoryService with the given storage backend.
func NewDirectoryService(store storage.Directory) *DirectoryService {
	return &DirectoryService{store: store}
}

// CreateUser registers a new user.
func (s *DirectoryService) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	slog.Info("CreateUser request received", "name", req.Msg.Name)

	user := &models.User{Name: req.Msg.Name}
	if err := s.store.CreateUser(ctx, user); err != nil {
		logFailure("CreateUser failed", err)
		return nil, toConnectError(err)
	}

	slog.Info("User created", "user_id", user.ID)

	return connect.NewResponse(&api.CreateUserResponse{User: userToAPI(*user)}), nil
}

// GetUser retrieves a user by ID.
func (s *DirectoryService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	slog.Info("GetUser request received", "user_id", req.Msg.UserID)

	user, err := s.store.GetUser(ctx, req.Msg.UserID)
	if err != nil {
		logFailure("GetUser failed", err, "user_id", req.Msg.UserID)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetUserResponse{User: userToAPI(*user)}), nil
}

// ListUsers retrieves all users.
func (s *DirectoryService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	slog.Info("ListUsers request received")

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		logFailure("ListUsers failed", err)
		return nil, toConnectError(err)
	}

	out := make([]api.User, 0, len(users))
	for _, u := range users {
		out = append(out, userToAPI(*u))
	}

	slog.Info("ListUsers successful", "count", len(out))

	return connect.NewResponse(&api.ListUsersResponse{Users: out}), nil
}

// CreateGroup creates a new group.
func (s *DirectoryService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	members := make([]models.User, 0, len(req.Msg.MemberIDs))
	for _, id := range req.Msg.MemberIDs {
		members = append(members, models.User{ID: id})
	}
	group := &models.Group{
		Name:    req.Msg.Name,
		Members: members,
	}

	// Save to storage (generates ID and CreatedAt, resolves members)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		logFailure("CreateGroup failed", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *DirectoryService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		logFailure("GetGroup failed", err, "group_id", req.Msg.GroupID)
		return nil, toConnectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves all groups.
func (s *DirectoryService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		logFailure("ListGroups failed", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupToAPI(g))
	}

	slog.Info("ListGroups successful", "count", len(out))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}
