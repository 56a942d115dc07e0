package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/aussiebroadwan/leadflow/internal/intake/store"
)

const reindexBatch = 200

// Reindex pushes every user and challenge into the search index and
// returns how many of each were sent.
func Reindex(ctx context.Context, st store.Store, index search.Index) (users, challenges int, err error) {
	if index == nil || !index.Healthy() {
		return 0, 0, errors.New("search index is not available")
	}

	for offset := 0; ; offset += reindexBatch {
		batch, _, err := st.Users().ListUsers(ctx, store.UserFilter{Page: store.Page{Limit: reindexBatch, Offset: offset}})
		if err != nil {
			return users, challenges, fmt.Errorf("list users: %w", err)
		}
		records := make([]search.UserRecord, len(batch))
		for i, u := range batch {
			records[i] = search.UserRecordOf(u)
		}
		if err := index.IndexUsers(ctx, records...); err != nil {
			return users, challenges, fmt.Errorf("index users: %w", err)
		}
		users += len(batch)
		if len(batch) < reindexBatch {
			break
		}
	}

	for offset := 0; ; offset += reindexBatch {
		batch, _, err := st.Challenges().ListChallenges(ctx, store.ChallengeFilter{Page: store.Page{Limit: reindexBatch, Offset: offset}})
		if err != nil {
			return users, challenges, fmt.Errorf("list challenges: %w", err)
		}
		records := make([]search.ChallengeRecord, len(batch))
		for i, c := range batch {
			records[i] = search.ChallengeRecordOf(c)
		}
		if err := index.IndexChallenges(ctx, records...); err != nil {
			return users, challenges, fmt.Errorf("index challenges: %w", err)
		}
		challenges += len(batch)
		if len(batch) < reindexBatch {
			break
		}
	}
	return users, challenges, nil
}
