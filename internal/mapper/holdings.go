package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/monarch-reports/internal/model"
	"github.com/shopspring/decimal"
)

type holdingsPayload struct {
	Portfolio *struct {
		AggregateHoldings *struct {
			Edges []holdingEdge `json:"edges"`
		} `json:"aggregateHoldings"`
	} `json:"portfolio"`
}

type holdingEdge struct {
	Node *holdingNode `json:"node"`
}

type holdingNode struct {
	ID       *identifier      `json:"id"`
	Quantity *decimal.Decimal `json:"quantity"`
	Basis    *decimal.Decimal `json:"basis"`
	Security *struct {
		ID           *identifier      `json:"id"`
		Ticker       *string          `json:"ticker"`
		CurrentPrice *decimal.Decimal `json:"currentPrice"`
	} `json:"security"`
}

// Holdings maps a single account's holdings response into portfolio rows.
// The account name is left empty; the response does not carry it.
func Holdings(raw json.RawMessage) ([]model.Holding, error) {
	var payload holdingsPayload
	if err := decode(raw, &payload, "portfolio"); err != nil {
		return nil, err
	}
	if payload.Portfolio == nil {
		return nil, missing("portfolio")
	}
	if payload.Portfolio.AggregateHoldings == nil {
		return nil, missing("portfolio.aggregateHoldings")
	}
	edges := payload.Portfolio.AggregateHoldings.Edges
	if edges == nil {
		return nil, missing("portfolio.aggregateHoldings.edges")
	}

	holdings := make([]model.Holding, 0, len(edges))
	for i, edge := range edges {
		path := fmt.Sprintf("portfolio.aggregateHoldings.edges[%d].node", i)
		if edge.Node == nil {
			return nil, missing(path)
		}
		h, err := edge.Node.toModel(path)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	return holdings, nil
}

func (n holdingNode) toModel(path string) (model.Holding, error) {
	if n.ID == nil {
		return model.Holding{}, missing(path + ".id")
	}
	if n.Quantity == nil {
		return model.Holding{}, missing(path + ".quantity")
	}
	if n.Basis == nil {
		return model.Holding{}, missing(path + ".basis")
	}
	if n.Security == nil {
		return model.Holding{}, missing(path + ".security")
	}
	if n.Security.ID == nil {
		return model.Holding{}, missing(path + ".security.id")
	}
	ticker, err := requireString(n.Security.Ticker, path+".security.ticker")
	if err != nil {
		return model.Holding{}, err
	}
	if n.Security.CurrentPrice == nil {
		return model.Holding{}, missing(path + ".security.currentPrice")
	}

	return model.Holding{
		Ticker: ticker,
		Shares: *n.Quantity,
		Price:  *n.Security.CurrentPrice,
		Cost:   *n.Basis,
	}, nil
}
