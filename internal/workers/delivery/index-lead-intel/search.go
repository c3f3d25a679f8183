// internal/workers/delivery/index-lead-intel/search.go
package indexleadintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

const defaultSearchSize = 20

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source LeadDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchRecentByTier returns the newest indexed leads of one tier.
func (h *Handler) SearchRecentByTier(ctx context.Context, tier string, size int) ([]LeadDocument, error) {
	if size <= 0 {
		size = defaultSearchSize
	}

	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"term": map[string]interface{}{"tier": tier},
		},
		"sort": []map[string]interface{}{
			{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrLeadIndexFailed, err)
	}

	res, err := h.client.Search(
		h.client.Search.WithContext(ctx),
		h.client.Search.WithIndex(h.config.IndexName),
		h.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeadIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search: %s", ErrLeadIndexFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrLeadIndexFailed, err)
	}

	docs := make([]LeadDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
