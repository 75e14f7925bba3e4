package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"filmtrack/internal/events"
	"filmtrack/internal/models"
	"filmtrack/internal/storage"
)

const (
	// MinSearchQueryLength 是用户搜索关键字的最短长度（去除首尾空白后）。
	MinSearchQueryLength = 2
	searchResultLimit    = 20

	// DefaultPublishTimeout 是单个好友关系事件发送的默认等待上限。
	DefaultPublishTimeout = 5 * time.Second
)

// FriendshipService 定义了好友关系相关的业务操作。
type FriendshipService interface {
	SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.UserProfile, error)
	SendFriendRequest(ctx context.Context, senderID, receiverID uint) (*models.Friendship, error)
	AcceptFriendRequest(ctx context.Context, friendshipID, actingUserID uint) (*models.Friendship, error)
	RejectFriendRequest(ctx context.Context, friendshipID, actingUserID uint) error
	RemoveFriend(ctx context.Context, friendshipID, actingUserID uint) error
	GetFriends(ctx context.Context, userID uint) ([]models.FriendEntry, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	GetFriendshipStatus(ctx context.Context, userID, otherUserID uint) (*models.FriendshipStatusView, error)
}

type friendshipService struct {
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
	publisher      events.Publisher
	publishTimeout time.Duration
	logger         *zap.Logger
}

// NewFriendshipService 创建一个新的 FriendshipService 实例。publisher 为 nil 时不发送事件，
// publishTimeout <= 0 时使用 DefaultPublishTimeout。
func NewFriendshipService(
	userRepo storage.UserRepository,
	friendshipRepo storage.FriendshipRepository,
	publisher events.Publisher,
	publishTimeout time.Duration,
	logger *zap.Logger,
) FriendshipService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if publishTimeout <= 0 {
		publishTimeout = DefaultPublishTimeout
	}
	return &friendshipService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		logger:         logger.Named("friendship_service"),
	}
}

func (s *friendshipService) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.UserProfile, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchQueryLength {
		return nil, ErrSearchQueryTooShort
	}
	users, err := s.userRepo.SearchProfiles(ctx, query, currentUserID, searchResultLimit)
	if err != nil {
		return nil, wrapInternal("Failed to search users", err)
	}
	return users, nil
}

// SendFriendRequest 创建一条 pending 状态的好友请求，方向为 sender -> receiver。
func (s *friendshipService) SendFriendRequest(ctx context.Context, senderID, receiverID uint) (*models.Friendship, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	// 1. 检查接收者是否存在
	exists, err := s.userRepo.Exists(ctx, receiverID)
	if err != nil {
		return nil, wrapInternal("Failed to send friend request", err)
	}
	if !exists {
		return nil, ErrReceiverNotFound
	}

	// 2. 任意方向已存在记录即视为重复
	if _, err := s.friendshipRepo.FindBetween(ctx, senderID, receiverID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !storage.IsNotFound(err) {
		return nil, wrapInternal("Failed to send friend request", err)
	}

	// 3. 写入；并发请求由唯一索引兜底
	friendship := &models.Friendship{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendshipStatusPending,
	}
	if err := s.friendshipRepo.Create(ctx, friendship); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrDuplicateRequest
		}
		return nil, wrapInternal("Failed to send friend request", err)
	}

	if err := s.attachProfiles(ctx, []*models.Friendship{friendship}, true, true); err != nil {
		return nil, err
	}

	s.publish(ctx, events.FriendRequestSent, friendship, senderID)
	return friendship, nil
}

// AcceptFriendRequest 只有接收者可以接受。已接受的请求再次接受仍返回成功。
func (s *friendshipService) AcceptFriendRequest(ctx context.Context, friendshipID, actingUserID uint) (*models.Friendship, error) {
	matched, err := s.friendshipRepo.AcceptAsReceiver(ctx, friendshipID, actingUserID)
	if err != nil {
		return nil, wrapInternal("Failed to accept friend request", err)
	}
	if !matched {
		return nil, s.classifyMiss(ctx, friendshipID, ErrFriendRequestNotFound, ErrAcceptForbidden)
	}

	friendship, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, wrapInternal("Failed to accept friend request", err)
	}
	if err := s.attachProfiles(ctx, []*models.Friendship{friendship}, true, true); err != nil {
		return nil, err
	}

	s.publish(ctx, events.FriendRequestAccepted, friendship, actingUserID)
	return friendship, nil
}

// RejectFriendRequest 删除请求，不检查当前状态。
func (s *friendshipService) RejectFriendRequest(ctx context.Context, friendshipID, actingUserID uint) error {
	// 先读出双方，删除后用于通知
	existing, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil && !storage.IsNotFound(err) {
		return wrapInternal("Failed to reject friend request", err)
	}

	matched, err := s.friendshipRepo.DeleteAsReceiver(ctx, friendshipID, actingUserID)
	if err != nil {
		return wrapInternal("Failed to reject friend request", err)
	}
	if !matched {
		return s.classifyMiss(ctx, friendshipID, ErrFriendRequestNotFound, ErrRejectForbidden)
	}

	if existing != nil {
		s.publish(ctx, events.FriendRequestRejected, existing, actingUserID)
	}
	return nil
}

// RemoveFriend 任意一方都可以删除好友关系，不检查当前状态。
func (s *friendshipService) RemoveFriend(ctx context.Context, friendshipID, actingUserID uint) error {
	existing, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil && !storage.IsNotFound(err) {
		return wrapInternal("Failed to remove friend", err)
	}

	matched, err := s.friendshipRepo.DeleteAsParty(ctx, friendshipID, actingUserID)
	if err != nil {
		return wrapInternal("Failed to remove friend", err)
	}
	if !matched {
		return s.classifyMiss(ctx, friendshipID, ErrFriendshipNotFound, ErrRemoveForbidden)
	}

	if existing != nil {
		s.publish(ctx, events.FriendshipRemoved, existing, actingUserID)
	}
	return nil
}

func (s *friendshipService) GetFriends(ctx context.Context, userID uint) ([]models.FriendEntry, error) {
	friendships, err := s.friendshipRepo.ListAccepted(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to get friends", err)
	}

	otherIDs := make([]uint, 0, len(friendships))
	for i := range friendships {
		otherIDs = append(otherIDs, friendships[i].OtherParty(userID))
	}
	profiles, err := s.profilesByID(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]models.FriendEntry, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		profile, ok := profiles[f.OtherParty(userID)]
		if !ok {
			s.logger.Warn("friend profile missing", zap.Uint("friendship_id", f.ID))
			continue
		}
		entries = append(entries, models.FriendEntry{FriendshipID: f.ID, Friend: profile})
	}
	return entries, nil
}

func (s *friendshipService) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	friendships, err := s.friendshipRepo.ListPendingReceived(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to get pending requests", err)
	}
	if err := s.attachProfiles(ctx, ptrs(friendships), true, false); err != nil {
		return nil, err
	}
	return friendships, nil
}

func (s *friendshipService) GetSentRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	friendships, err := s.friendshipRepo.ListPendingSent(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to get sent requests", err)
	}
	if err := s.attachProfiles(ctx, ptrs(friendships), false, true); err != nil {
		return nil, err
	}
	return friendships, nil
}

// GetFriendshipStatus 返回 userID 视角下与 otherUserID 的关系。
func (s *friendshipService) GetFriendshipStatus(ctx context.Context, userID, otherUserID uint) (*models.FriendshipStatusView, error) {
	friendship, err := s.friendshipRepo.FindBetween(ctx, userID, otherUserID)
	if err != nil {
		if storage.IsNotFound(err) {
			return &models.FriendshipStatusView{Status: models.StatusNone}, nil
		}
		return nil, wrapInternal("Failed to get friendship status", err)
	}

	id := friendship.ID
	isSender := friendship.SenderID == userID
	return &models.FriendshipStatusView{
		Status:       string(friendship.Status),
		FriendshipID: &id,
		IsSender:     &isSender,
	}, nil
}

// classifyMiss 在条件写入未命中后区分记录不存在和非当事人操作。
func (s *friendshipService) classifyMiss(ctx context.Context, id uint, notFound, forbidden error) error {
	if _, err := s.friendshipRepo.GetByID(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return notFound
		}
		return wrapInternal("Failed to look up friendship", err)
	}
	return forbidden
}

func (s *friendshipService) profilesByID(ctx context.Context, ids []uint) (map[uint]models.UserProfile, error) {
	profiles, err := s.userRepo.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, wrapInternal("Failed to load user profiles", err)
	}
	byID := make(map[uint]models.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID, nil
}

// attachProfiles 为好友请求填充 sender / receiver 的公开信息。
func (s *friendshipService) attachProfiles(ctx context.Context, friendships []*models.Friendship, sender, receiver bool) error {
	if len(friendships) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(friendships)*2)
	for _, f := range friendships {
		if sender {
			ids = append(ids, f.SenderID)
		}
		if receiver {
			ids = append(ids, f.ReceiverID)
		}
	}
	profiles, err := s.profilesByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, f := range friendships {
		if p, ok := profiles[f.SenderID]; ok && sender {
			f.Sender = &p
		}
		if p, ok := profiles[f.ReceiverID]; ok && receiver {
			f.Receiver = &p
		}
	}
	return nil
}

// publish 在状态变更提交之后发送事件，失败或超时只记录日志。
// 请求被取消不影响已提交的变更，所以这里脱离请求的取消信号，只保留自己的超时。
func (s *friendshipService) publish(ctx context.Context, typ events.Type, f *models.Friendship, actorID uint) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	event := events.FriendshipEvent{
		Type:         typ,
		FriendshipID: f.ID,
		SenderID:     f.SenderID,
		ReceiverID:   f.ReceiverID,
		ActorID:      actorID,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.publisher.PublishFriendshipEvent(ctx, event); err != nil {
		s.logger.Warn("publish friendship event failed",
			zap.String("type", string(typ)),
			zap.Uint("friendship_id", f.ID),
			zap.Error(err))
	}
}

func ptrs(friendships []models.Friendship) []*models.Friendship {
	out := make([]*models.Friendship, len(friendships))
	for i := range friendships {
		out[i] = &friendships[i]
	}
	return out
}
