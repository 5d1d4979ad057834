package store

import (
	"context"
	"fmt"

	"chat-realtime-api/internal/models"

	"github.com/google/uuid"
)

// pairClause matches a friendship between a and b regardless of who asked.
const pairClause = "((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))"

// IsAccepted reports whether an accepted friendship exists between a and b
// in either direction.
func (s *Store) IsAccepted(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Friendship{}).
		Where(pairClause+" AND status = ?", a, b, b, a, models.FriendshipAccepted).
		Count(&count).Error
	return count > 0, err
}

// CreateFriendRequest records a pending request from requesterID to addresseeID.
// A pending or accepted record between the pair, in either direction, yields
// ErrAlreadyExists.
func (s *Store) CreateFriendRequest(ctx context.Context, requesterID, addresseeID string) (*models.Friendship, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Friendship{}).
		Where(pairClause+" AND status IN ?", requesterID, addresseeID, addresseeID, requesterID,
			[]models.FriendshipStatus{models.FriendshipPending, models.FriendshipAccepted}).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check existing friendship: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}

	f := &models.Friendship{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipPending,
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// RespondFriendRequest moves a pending request addressed to addresseeID to
// status. Requests addressed to someone else are reported as ErrNotFound.
func (s *Store) RespondFriendRequest(ctx context.Context, id, addresseeID string, status models.FriendshipStatus) (*models.Friendship, error) {
	var f models.Friendship
	err := s.db.WithContext(ctx).
		Where("id = ? AND addressee_id = ? AND status = ?", id, addresseeID, models.FriendshipPending).
		First(&f).Error
	if err != nil {
		return nil, notFound(err)
	}

	if err := s.db.WithContext(ctx).Model(&f).Update("status", status).Error; err != nil {
		return nil, err
	}
	f.Status = status
	return &f, nil
}

// ListPendingRequests returns requests waiting for userID to answer.
func (s *Store) ListPendingRequests(ctx context.Context, userID string) ([]models.Friendship, error) {
	var out []models.Friendship
	err := s.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListFriends returns the users that share an accepted friendship with userID.
func (s *Store) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	var links []models.Friendship
	err := s.db.WithContext(ctx).
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []models.User{}, nil
	}

	ids := make([]string, 0, len(links))
	for _, l := range links {
		if l.RequesterID == userID {
			ids = append(ids, l.AddresseeID)
		} else {
			ids = append(ids, l.RequesterID)
		}
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
