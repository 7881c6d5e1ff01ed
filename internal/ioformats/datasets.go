
package ioformats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"indiesite/internal/fetch"
	"indiesite/internal/models"
	"indiesite/internal/urlnorm"
	"indiesite/pkg/logger"
)

// mentionsFile accepts both a pre-grouped export ({"mentions": {url: [...]}})
// and a flat jf2 feed ({"children": [...]}).
type mentionsFile struct {
	Mentions map[string][]models.Interaction `json:"mentions"`
	Children []models.Interaction            `json:"children"`
}

// ReadMentionStore decodes a webmention export into a store keyed by the
// normalized target URL. Raw keys that normalize to the same URL are merged
// in sorted key order so the result does not depend on map iteration.
func ReadMentionStore(r io.Reader) (models.MentionStore, error) {
	var file mentionsFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return models.MentionStore{}, fmt.Errorf("decode webmentions: %w", err)
	}

	store := models.MentionStore{Mentions: map[string][]models.Interaction{}}
	keys := make([]string, 0, len(file.Mentions))
	for k := range file.Mentions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		norm := urlnorm.Normalize(k)
		store.Mentions[norm] = append(store.Mentions[norm], file.Mentions[k]...)
	}
	for _, it := range file.Children {
		norm := urlnorm.Normalize(it.TargetURL)
		store.Mentions[norm] = append(store.Mentions[norm], it)
	}
	return store, nil
}

func ReadBlockList(r io.Reader) (models.BlockList, error) {
	var list models.BlockList
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode block list: %w", err)
	}
	return list, nil
}

func ReadAnalytics(r io.Reader) (models.Analytics, error) {
	an := models.Analytics{}
	if err := json.NewDecoder(r).Decode(&an); err != nil {
		return nil, fmt.Errorf("decode analytics: %w", err)
	}
	return an, nil
}

// Loader opens dataset sources, which may be local paths or URLs of
// pre-built files.
type Loader struct {
	Client *fetch.HTTPClient
	// Log receives debug notes about records that were kept with
	// unreadable timestamps. Optional.
	Log *logger.Logger
}

func (l Loader) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !fetch.IsRemote(src) {
		return os.Open(src)
	}
	if l.Client == nil {
		return nil, fmt.Errorf("open %s: remote sources need an http client", src)
	}
	body, _, _, _, err := l.Client.Fetch(ctx, src)
	return body, err
}

// Optional reports whether a missing local file should be treated as an
// empty dataset rather than an error.
func Optional(err error) bool {
	return os.IsNotExist(err)
}

func (l Loader) MentionStore(ctx context.Context, src string) (models.MentionStore, error) {
	rc, err := l.Open(ctx, src)
	if err != nil {
		if Optional(err) {
			return models.MentionStore{Mentions: map[string][]models.Interaction{}}, nil
		}
		return models.MentionStore{}, err
	}
	defer rc.Close()
	store, err := ReadMentionStore(rc)
	if err != nil {
		return store, err
	}
	if l.Log != nil {
		for target, items := range store.Mentions {
			for _, it := range items {
				if bad := it.Invalid(); len(bad) > 0 {
					l.Log.Debugf("webmention %s on %s: unreadable %v", it.SourceURL, target, bad)
				}
			}
		}
	}
	return store, nil
}

func (l Loader) BlockList(ctx context.Context, src string) (models.BlockList, error) {
	rc, err := l.Open(ctx, src)
	if err != nil {
		if Optional(err) {
			return models.BlockList{}, nil
		}
		return nil, err
	}
	defer rc.Close()
	return ReadBlockList(rc)
}

func (l Loader) Analytics(ctx context.Context, src string) (models.Analytics, error) {
	rc, err := l.Open(ctx, src)
	if err != nil {
		if Optional(err) {
			return models.Analytics{}, nil
		}
		return nil, err
	}
	defer rc.Close()
	return ReadAnalytics(rc)
}
