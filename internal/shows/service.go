package shows

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tixbridge/internal/catalog"
	"tixbridge/internal/shared/apperr"
	"tixbridge/pkg/logger"
)

type Service interface {
	ListShows(ctx context.Context, query ListQuery) (*ShowList, error)
	GetShow(ctx context.Context, id string) (*Show, error)
}

// ServiceConfig holds the catalog query shape
type ServiceConfig struct {
	EventType       string
	PageSize        int
	AllPageSize     int
	DefaultLocation string
}

type service struct {
	client catalog.Client
	policy Policy
	config ServiceConfig
	log    *logger.Logger
	now    func() time.Time
}

func NewService(client catalog.Client, policy Policy, cfg ServiceConfig, log *logger.Logger) Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}
	if cfg.AllPageSize <= 0 {
		cfg.AllPageSize = 100
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		client: client,
		policy: policy,
		config: cfg,
		log:    log.WithComponent("shows"),
		now:    time.Now,
	}
}

func (s *service) ListShows(ctx context.Context, query ListQuery) (*ShowList, error) {
	location := strings.TrimSpace(query.Location)
	if location == "" {
		location = s.config.DefaultLocation
	}

	var (
		result   []Show
		fetched  int
		rejected int
	)

	if query.FetchAll {
		batches, err := s.fetchAll(ctx, location)
		if err != nil {
			return nil, err
		}
		for _, b := range batches {
			fetched += len(b)
		}
		result, rejected = s.merge(true, batches...)
	} else {
		entries, err := s.search(ctx, "catalog.search.city", location, s.config.PageSize)
		if err != nil {
			return nil, err
		}
		fetched = len(entries)
		result, rejected = s.merge(false, entries)
	}

	s.log.LogAggregate(ctx, location, query.FetchAll, fetched, rejected, len(result))

	return &ShowList{
		Shows:       result,
		Count:       len(result),
		GeneratedAt: s.now().UTC(),
	}, nil
}

// fetchAll runs the city-scoped and general queries concurrently. Batches are
// returned in merge order (city first) no matter which call finishes first.
func (s *service) fetchAll(ctx context.Context, location string) ([][]catalog.Entry, error) {
	var (
		g       errgroup.Group
		city    []catalog.Entry
		general []catalog.Entry
	)

	if location != "" {
		g.Go(func() error {
			entries, err := s.search(ctx, "catalog.search.city", location, s.config.AllPageSize)
			city = entries
			return err
		})
	}
	g.Go(func() error {
		entries, err := s.search(ctx, "catalog.search.general", "", s.config.AllPageSize)
		general = entries
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return [][]catalog.Entry{city, general}, nil
}

// search issues one catalog query. Upstream failures degrade to an empty
// batch; only configuration errors are returned.
func (s *service) search(ctx context.Context, call, city string, perPage int) ([]catalog.Entry, error) {
	query := catalog.Query{
		City:     city,
		Type:     s.config.EventType,
		PerPage:  perPage,
		Page:     1,
		DateFrom: s.now(),
	}

	start := time.Now()
	entries, err := s.client.Search(ctx, query)
	s.log.LogUpstreamCall(ctx, call, query.Params(), len(entries), time.Since(start), err)

	if err != nil {
		if apperr.Is(err, apperr.KindConfiguration) {
			return nil, err
		}
		return nil, nil
	}
	return entries, nil
}

// merge normalizes batches in order. Gate-rejected entries are dropped before
// they can occupy a dedup slot; with dedup on, the first occurrence wins.
func (s *service) merge(dedup bool, batches ...[]catalog.Entry) ([]Show, int) {
	seen := make(map[string]struct{})
	result := make([]Show, 0)
	rejected := 0

	for _, batch := range batches {
		for _, entry := range batch {
			id := strings.TrimSpace(entry.ID.String())
			if id == "" || !s.policy.Admit(entry) {
				rejected++
				continue
			}
			if dedup {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
			}
			result = append(result, Normalize(entry, s.policy))
		}
	}
	return result, rejected
}

func (s *service) GetShow(ctx context.Context, id string) (*Show, error) {
	start := time.Now()
	entry, err := s.client.Get(ctx, id)
	count := 0
	if entry != nil {
		count = 1
	}
	s.log.LogUpstreamCall(ctx, "catalog.get", map[string]string{"id": id}, count, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	show := Normalize(*entry, s.policy)
	return &show, nil
}
