package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"time"
)

// Catalog is an immutable, versioned view of all rate cards.
type Catalog struct {
	byService map[ServiceKind][]RateCard
	version   string
}

func NewCatalog(cards ...RateCard) *Catalog {
	byService := make(map[ServiceKind][]RateCard)
	for _, c := range cards {
		byService[c.Service] = append(byService[c.Service], c)
	}
	for _, list := range byService {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].EffectiveFrom.Before(list[j].EffectiveFrom)
		})
	}
	cat := &Catalog{byService: byService}
	cat.version = cat.hash()
	return cat
}

// Get returns the card in force for service at asOf: the latest card whose
// EffectiveFrom is not after asOf. An inactive latest card means the service is off.
func (c *Catalog) Get(service ServiceKind, asOf time.Time) (RateCard, error) {
	if !service.Valid() {
		return RateCard{}, &NotFoundError{Service: service}
	}
	list := c.byService[service]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].EffectiveFrom.After(asOf) {
			continue
		}
		if !list[i].Active {
			break
		}
		return list[i], nil
	}
	return RateCard{}, &NotFoundError{Service: service}
}

// Cards lists every version ordered by service then EffectiveFrom.
func (c *Catalog) Cards() []RateCard {
	var out []RateCard
	for _, k := range ServiceKinds {
		out = append(out, c.byService[k]...)
	}
	return out
}

// Version is a content hash of the catalog; it changes whenever a card is added.
func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) hash() string {
	h := sha256.New()
	for _, card := range c.Cards() {
		h.Write([]byte(card.ID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(card.EffectiveFrom.UnixNano(), 10)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatBool(card.Active)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
