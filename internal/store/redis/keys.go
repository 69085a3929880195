package redis

import (
	"strconv"
	"strings"
)

const (
	// KeyPrefix is shared by every key the store writes
	KeyPrefix = "automator:"
	// KeyOptions is the hash holding every option
	KeyOptions = KeyPrefix + "options"
	// KeyPrefixQueue is the prefix of trigger queue lists
	KeyPrefixQueue = KeyPrefix + "queue:"
	// KeyPrefixPost is the prefix of post hashes
	KeyPrefixPost = KeyPrefix + "post:"
	// KeyPrefixPostType is the prefix of the per post type id sets
	KeyPrefixPostType = KeyPrefix + "posts:type:"
	// KeyPostSeq is the post id sequence
	KeyPostSeq = KeyPrefix + "posts:seq"
	// KeyPrefixDismissed is the prefix of the per user dismissed notification sets
	KeyPrefixDismissed = KeyPrefix + "ian:dismissed:"
	// KeyPrefixCache is the prefix of expiring cache entries
	KeyPrefixCache = KeyPrefix + "cache:"
	// KeyPrefixAccess is the prefix of the per integration connection hashes
	KeyPrefixAccess = KeyPrefix + "access:"
)

// QueueKey returns the list key of a trigger queue, ex: automator:queue:zapier:canceled_events
func QueueKey(queue string) string {
	return KeyPrefixQueue + queue
}

// QueueName extracts the queue name from its list key.
func QueueName(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, KeyPrefixQueue)
	return name, ok && name != ""
}

func PostKey(id int64) string {
	return KeyPrefixPost + strconv.FormatInt(id, 10)
}

func PostTypeKey(postType string) string {
	return KeyPrefixPostType + postType
}

func DismissedKey(user string) string {
	return KeyPrefixDismissed + user
}

func CacheKey(name string) string {
	return KeyPrefixCache + name
}

func AccessKey(integrationID string) string {
	return KeyPrefixAccess + integrationID
}
