package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/automator/internal/automator"
)

// SavePost stores a post and indexes it by type.
func (s *Store) SavePost(ctx context.Context, post *automator.Post) error {
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = s.now().UTC()
	}

	key := PostKey(post.ID)
	prev, err := s.client.HGet(ctx, key, "type").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read post %d: %w", post.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"type", post.Type,
		"title", post.Title,
		"status", post.Status,
		"updated_at", post.UpdatedAt.Format(time.RFC3339Nano),
	)
	if prev != "" && prev != post.Type {
		pipe.SRem(ctx, PostTypeKey(prev), post.ID)
	}
	pipe.SAdd(ctx, PostTypeKey(post.Type), post.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save post %d: %w", post.ID, err)
	}
	return nil
}

// GetPost returns ErrNotFound for an unknown id.
func (s *Store) GetPost(ctx context.Context, id int64) (*automator.Post, error) {
	fields, err := s.client.HGetAll(ctx, PostKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	post := &automator.Post{
		ID:     id,
		Type:   fields["type"],
		Title:  fields["title"],
		Status: fields["status"],
	}
	if ts := fields["updated_at"]; ts != "" {
		if post.UpdatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("post %d: bad updated_at: %w", id, err)
		}
	}
	return post, nil
}

// PostStatus returns "" when the post does not exist.
func (s *Store) PostStatus(ctx context.Context, id int64) (string, error) {
	status, err := s.client.HGet(ctx, PostKey(id), "status").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get post %d status: %w", id, err)
	}
	return status, nil
}

// raisePostSeq moves the id sequence up to ARGV[1], never down.
var raisePostSeq = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local id = tonumber(ARGV[1])
if id > cur then
	redis.call("SET", KEYS[1], ARGV[1])
	return id
end
return cur
`)

// SetPostStatus updates the status of a post, creating it when needed, and
// returns the previous status. Ids reported by the site are reserved so
// NextPostID never hands them out again.
func (s *Store) SetPostStatus(ctx context.Context, id int64, postType, status string) (string, error) {
	post, err := s.GetPost(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		post = &automator.Post{ID: id, Type: postType}
	case err != nil:
		return "", err
	}
	if err := raisePostSeq.Run(ctx, s.client, []string{KeyPostSeq}, id).Err(); err != nil {
		return "", fmt.Errorf("failed to reserve post id %d: %w", id, err)
	}

	prev := post.Status
	post.Status = status
	if postType != "" {
		post.Type = postType
	}
	post.UpdatedAt = s.now().UTC()
	if err := s.SavePost(ctx, post); err != nil {
		return "", err
	}
	return prev, nil
}

func (s *Store) NextPostID(ctx context.Context) (int64, error) {
	id, err := s.client.Incr(ctx, KeyPostSeq).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate post id: %w", err)
	}
	return id, nil
}

// FindPosts returns the posts of a type whose title contains search, case
// insensitive, ordered by id. limit <= 0 means no limit.
func (s *Store) FindPosts(ctx context.Context, postType, search string, limit int) ([]automator.Post, error) {
	members, err := s.client.SMembers(ctx, PostTypeKey(postType)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s posts: %w", postType, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	needle := strings.ToLower(search)
	posts := make([]automator.Post, 0)
	for _, id := range ids {
		post, err := s.GetPost(ctx, id)
		if err != nil {
			// Skip posts that vanished since the scan
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(post.Title), needle) {
			continue
		}
		posts = append(posts, *post)
		if limit > 0 && len(posts) == limit {
			break
		}
	}
	return posts, nil
}
