// Package promotions owns the mutable list of promotion campaigns.
package promotions

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/models"
)

const (
	idAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength          = 8
	dateLayout        = "2006-01-02"
	minRedemptionRate = 0.1
	maxRedemptionRate = 0.5

	MessageExists = "Promotion already exists!"
)

// ErrInvalidRequest marks a promotion request that is incomplete or refers to
// an unknown target or channel.
var ErrInvalidRequest = errors.New("invalid promotion request")

type Result struct {
	Added     bool             `json:"added"`
	Message   string           `json:"message"`
	Promotion models.Promotion `json:"promotion"`
}

// Store serializes every read-check-append on the promotion list behind one
// mutex.
type Store struct {
	mu      sync.Mutex
	items   []models.Promotion
	rng     *rand.Rand
	catalog *catalog.Catalog
}

// NewStore seeds one placeholder promotion per catalog promo event.
func NewStore(cat *catalog.Catalog, seed uint64) (*Store, error) {
	s := &Store{
		rng:     rand.New(rand.NewPCG(seed, seed+7)),
		catalog: cat,
	}

	for _, event := range cat.PromoEvents {
		id, err := gonanoid.Generate(idAlphabet, idLength)
		if err != nil {
			return nil, errors.Wrap(err, "generate promotion id")
		}
		s.items = append(s.items, models.Promotion{
			ID:             id,
			Name:           event,
			StartDate:      cat.Start,
			EndDate:        cat.End,
			Target:         catalog.All,
			RedemptionRate: s.redemptionRate(),
		})
	}

	return s, nil
}

// Add appends a new promotion unless its name is already taken. A name
// collision is reported through Result, not as an error.
func (s *Store) Add(req models.PromotionRequest) (Result, error) {
	promo, err := s.validate(req)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.ContainsFunc(s.items, func(p models.Promotion) bool { return p.Name == promo.Name }) {
		return Result{Added: false, Message: MessageExists}, nil
	}

	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return Result{}, errors.Wrap(err, "generate promotion id")
	}
	promo.ID = id
	promo.RedemptionRate = s.redemptionRate()
	s.items = append(s.items, promo)

	return Result{
		Added:     true,
		Message:   fmt.Sprintf("Added promotion: %s for %s", promo.Name, promo.Channel),
		Promotion: promo,
	}, nil
}

func (s *Store) List() []models.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// redemptionRate must be called with mu held or before the store is shared.
func (s *Store) redemptionRate() float64 {
	return minRedemptionRate + s.rng.Float64()*(maxRedemptionRate-minRedemptionRate)
}

func (s *Store) validate(req models.PromotionRequest) (models.Promotion, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.StartDate == "" || req.EndDate == "" || req.Target == "" || req.Channel == "" {
		return models.Promotion{}, errors.Wrap(ErrInvalidRequest, "name, start_date, end_date, target and channel are required")
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return models.Promotion{}, errors.Wrapf(ErrInvalidRequest, "start_date %q is not YYYY-MM-DD", req.StartDate)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return models.Promotion{}, errors.Wrapf(ErrInvalidRequest, "end_date %q is not YYYY-MM-DD", req.EndDate)
	}
	if end.Before(start) {
		return models.Promotion{}, errors.Wrap(ErrInvalidRequest, "end_date is before start_date")
	}

	if !s.catalog.HasPromoTarget(req.Target) {
		return models.Promotion{}, errors.Wrapf(ErrInvalidRequest, "unknown target %q", req.Target)
	}
	if !s.catalog.HasChannel(req.Channel) {
		return models.Promotion{}, errors.Wrapf(ErrInvalidRequest, "unknown channel %q", req.Channel)
	}

	return models.Promotion{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Target:    req.Target,
		Channel:   req.Channel,
	}, nil
}
