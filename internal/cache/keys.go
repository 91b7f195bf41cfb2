package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	TagsTTL  = 5 * time.Minute
	StatsTTL = time.Minute

	tagsPrefix = "queryhub:tags:"
	StatsKey   = "queryhub:stats:dashboard"
)

func TagListKey(search string) string {
	return tagsPrefix + "list:" + strings.ToLower(strings.TrimSpace(search))
}

func PopularTagsKey(limit int) string {
	return fmt.Sprintf("%spopular:%d", tagsPrefix, limit)
}

// TagsPrefix covers every tag list key.
func TagsPrefix() string {
	return tagsPrefix
}
