// Package search mirrors the active menu into Elasticsearch for fuzzy lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

var ErrDisabled = errors.New("search index disabled")

type Index interface {
	IndexFood(ctx context.Context, f models.Food) error
	RemoveFood(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, limit int) ([]uint, error)
}

// Disabled is used when ES_URL is unset; callers fall back to the database on ErrDisabled.
type Disabled struct{}

func (Disabled) IndexFood(context.Context, models.Food) error { return nil }
func (Disabled) RemoveFood(context.Context, uint) error        { return nil }
func (Disabled) Search(context.Context, string, int) ([]uint, error) {
	return nil, ErrDisabled
}

func NewClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error %s: %s", res.Status(), body)
	}
	return client, nil
}

type ESIndex struct {
	Client *elasticsearch.Client
	Name   string
}

type foodDoc struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
}

func (ix *ESIndex) IndexFood(ctx context.Context, f models.Food) error {
	if !f.Active {
		return ix.RemoveFood(ctx, f.ID)
	}

	var buf bytes.Buffer
	doc := foodDoc{ID: f.ID, Name: f.Name, Description: f.Description, Category: f.Category, Active: f.Active}
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	res, err := ix.Client.Index(ix.Name, &buf,
		ix.Client.Index.WithContext(ctx),
		ix.Client.Index.WithDocumentID(strconv.FormatUint(uint64(f.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index food %d: %w", f.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index food %d: %s", f.ID, res.Status())
	}
	return nil
}

func (ix *ESIndex) RemoveFood(ctx context.Context, id uint) error {
	res, err := ix.Client.Delete(ix.Name, strconv.FormatUint(uint64(id), 10),
		ix.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("remove food %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove food %d: %s", id, res.Status())
	}
	return nil
}

// Search returns ids of matching active foods, best match first.
func (ix *ESIndex) Search(ctx context.Context, q string, limit int) ([]uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "description", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{"term": map[string]any{"active": true}},
			},
		},
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := ix.Client.Search(
		ix.Client.Search.WithContext(ctx),
		ix.Client.Search.WithIndex(ix.Name),
		ix.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search foods: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search foods: %s", res.Status())
	}

	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]uint, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				Source foodDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}
