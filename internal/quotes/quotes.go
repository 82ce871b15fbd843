// Package quotes serves the short price/change quotes shown on the home page.
// It is separate from the analysis path and is the only cached data in the
// process.
package quotes

import (
	"context"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"StockLens/internal/logger"
)

// Quote is a one-line market snapshot.
type Quote struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name,omitempty"`
	Price     string   `json:"price,omitempty"`
	PriceRaw  *float64 `json:"price_raw,omitempty"`
	ChangeFmt string   `json:"change,omitempty"`
	ChangeRaw *float64 `json:"change_raw,omitempty"`
	Err       string   `json:"error,omitempty"`
}

// Up reports whether the change is non-negative. Unknown changes are not up.
func (q Quote) Up() bool { return q.ChangeRaw != nil && *q.ChangeRaw >= 0 }

// Service fetches a quote for a symbol.
type Service interface {
	Get(ctx context.Context, sym string) (Quote, error)
}

// YFService implements Service using yf-go.
type YFService struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFService(timeout time.Duration) *YFService {
	return &YFService{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFService) Get(ctx context.Context, sym string) (Quote, error) {
	if sym == "" {
		return Quote{}, nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, sym, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
	if err != nil {
		return Quote{}, err
	}
	if res.Price == nil {
		return Quote{}, fmt.Errorf("no price for %s", sym)
	}

	q := Quote{Symbol: sym}
	p := res.Price.RegularMarketPrice
	if p.Raw != nil {
		v := *p.Raw
		q.PriceRaw = &v
	}
	if p.Fmt != "" {
		q.Price = p.Fmt
	} else if p.Raw != nil {
		q.Price = fmt.Sprintf("%.2f", *p.Raw)
	}

	cp := res.Price.RegularMarketChangePercent
	if cp.Raw != nil {
		v := *cp.Raw
		q.ChangeRaw = &v
	}
	if cp.Fmt != "" {
		q.ChangeFmt = cp.Fmt
	} else if cp.Raw != nil {
		q.ChangeFmt = fmt.Sprintf("%.2f%%", *cp.Raw*100)
	}

	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	return q, nil
}

// Board fetches quotes for symbols in order. A failing symbol keeps its slot
// with Err set and blank values.
func Board(ctx context.Context, svc Service, symbols []string) []Quote {
	out := make([]Quote, 0, len(symbols))
	for _, sym := range symbols {
		if ctx.Err() != nil {
			out = append(out, Quote{Symbol: sym, Err: ctx.Err().Error()})
			continue
		}
		q, err := svc.Get(ctx, sym)
		if err != nil {
			logger.Log.Warnf("quote %s: %v", sym, err)
			out = append(out, Quote{Symbol: sym, Err: err.Error()})
			continue
		}
		q.Symbol = sym
		out = append(out, q)
	}
	return out
}
