package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AMV0027/gcn-final/internal/model"
)

func TestImageRankerThresholdAndLimit(t *testing.T) {
	records := make([]model.ImageRecord, 0, 8)
	vectors := map[string][]float32{"exit signs": {1, 0, 0}}
	for i := 0; i < 7; i++ {
		caption := fmt.Sprintf("caption %d", i)
		records = append(records, model.ImageRecord{DocumentName: "Doc", Caption: caption, Image: []byte{byte(i)}})
		vectors[caption] = []float32{1, float32(i) * 0.1, 0}
	}
	records = append(records, model.ImageRecord{DocumentName: "Doc", Caption: "orthogonal", Image: []byte("x")})
	vectors["orthogonal"] = []float32{0, 1, 0}

	r, err := NewImageRanker(&fakeCorpus{images: records}, &fakeEmbedder{vectors: vectors}, 2)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Rank(context.Background(), "exit signs", DefaultImageThreshold)
	require.NoError(t, err)
	require.Len(t, got, MaxImages)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte{0}), got[0].ImageBase64)
	for i, img := range got {
		require.Equal(t, i+1, img.Rank)
		require.GreaterOrEqual(t, img.Similarity, DefaultImageThreshold)
		if i > 0 {
			require.GreaterOrEqual(t, got[i-1].Similarity, img.Similarity)
		}
	}
}

func TestImageRankerSkipsFailedCaptions(t *testing.T) {
	records := []model.ImageRecord{
		{DocumentName: "Doc", Caption: "broken", Image: []byte("a")},
		{DocumentName: "Doc", Caption: "zero", Image: []byte("b")},
		{DocumentName: "Doc", Caption: "good", Image: []byte("c")},
	}
	emb := &fakeEmbedder{
		vectors: map[string][]float32{"q": {1, 0}, "zero": {0, 0}, "good": {1, 0}},
		fail:    map[string]bool{"broken": true},
	}
	r, err := NewImageRanker(&fakeCorpus{images: records}, emb, 0)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Rank(context.Background(), "q", DefaultImageThreshold)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("c")), got[0].ImageBase64)
}

func TestImageRankerErrors(t *testing.T) {
	boom := errors.New("db down")
	r, err := NewImageRanker(&fakeCorpus{imagesErr: boom}, &fakeEmbedder{}, 1)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Rank(context.Background(), "q", 0.6)
	require.ErrorIs(t, err, boom)

	r2, err := NewImageRanker(
		&fakeCorpus{images: []model.ImageRecord{{Caption: "c"}}},
		&fakeEmbedder{fail: map[string]bool{"q": true}},
		1,
	)
	require.NoError(t, err)
	defer r2.Close()
	_, err = r2.Rank(context.Background(), "q", 0.6)
	require.Error(t, err)
}

func TestImageRankerEmptyStoreSkipsEmbedding(t *testing.T) {
	emb := &fakeEmbedder{}
	r, err := NewImageRanker(&fakeCorpus{}, emb, 1)
	require.NoError(t, err)
	defer r.Close()
	got, err := r.Rank(context.Background(), "q", 0.6)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Zero(t, emb.calls)
}
