//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/northwind-orders/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderLine struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int64   `json:"quantity"`
	Discount    float64 `json:"discount"`
}

type orderPayload struct {
	ID             int64       `json:"id,omitempty"`
	CustomerID     string      `json:"customerId"`
	CustomerName   string      `json:"customerName,omitempty"`
	EmployeeID     int64       `json:"employeeId"`
	ShipVia        int64       `json:"shipVia"`
	OrderDate      string      `json:"orderDate,omitempty"`
	RequiredDate   string      `json:"requiredDate,omitempty"`
	Freight        float64     `json:"freight"`
	ShipName       string      `json:"shipName"`
	ShipAddress    string      `json:"shipAddress"`
	ShipCity       string      `json:"shipCity"`
	ShipPostalCode string      `json:"shipPostalCode"`
	ShipCountry    string      `json:"shipCountry"`
	Total          float64     `json:"total,omitempty"`
	Details        []orderLine `json:"details"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status  int
	problem string
	title   string
	detail  string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestOrderPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	requestOrder := orderPayload{
		CustomerID:     pacttest.CustomerID,
		EmployeeID:     pacttest.EmployeeID,
		ShipVia:        pacttest.ShipperID,
		OrderDate:      pacttest.ExampleOrderDate,
		RequiredDate:   pacttest.ExampleRequiredDate,
		Freight:        32.38,
		ShipName:       "Vins et alcools Chevalier",
		ShipAddress:    "59 rue de l'Abbaye",
		ShipCity:       "Reims",
		ShipPostalCode: "51100",
		ShipCountry:    "France",
		Details:        []orderLine{{ProductID: pacttest.ProductID, UnitPrice: 14, Quantity: 12}},
	}
	emptyLine := requestOrder
	emptyLine.Details = []orderLine{{ProductID: pacttest.ProductID, UnitPrice: 14, Quantity: 0}}
	orderMatcher := matchers.Map{
		"id":           matchers.Like(pacttest.ExistingOrderID),
		"customerId":   matchers.Like(requestOrder.CustomerID),
		"customerName": matchers.Like("Vins et alcools Chevalier"),
		"employeeId":   matchers.Like(requestOrder.EmployeeID),
		"shipVia":      matchers.Like(requestOrder.ShipVia),
		"freight":      matchers.Like(requestOrder.Freight),
		"total":        matchers.Like(168.0),
		"details": matchers.ArrayMinLike(matchers.Map{
			"productId":   matchers.Like(int64(pacttest.ProductID)),
			"productName": matchers.Like("Queso Cabrales"),
			"unitPrice":   matchers.Like(14.0),
			"quantity":    matchers.Like(12),
		}, 1),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("a request to place an order").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(orderRequestMatcher(requestOrder))
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("a request to place an order with an empty line").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(orderRequestMatcher(emptyLine))
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/validation-error"),
				"title":  matchers.S("Validation Error"),
				"status": matchers.Like(http.StatusBadRequest),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("a request to fetch an existing order").
		WithRequest("GET", fmt.Sprintf("/api/orders/%d", pacttest.ExistingOrderID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", fmt.Sprintf("/api/orders/%d", pacttest.MissingOrderID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrderClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		placed, err := client.PlaceOrder(ctx, requestOrder)
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if placed == nil || placed.ID == 0 || len(placed.Details) == 0 {
			return fmt.Errorf("expected placed order with id and lines, got %+v", placed)
		}

		if _, err := client.PlaceOrder(ctx, emptyLine); err == nil {
			return fmt.Errorf("expected 400 for an empty line")
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusBadRequest {
			return fmt.Errorf("expected 400, got %d", apiErr.Status())
		}

		fetched, err := client.GetOrder(ctx, pacttest.ExistingOrderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if fetched == nil || fetched.ID != pacttest.ExistingOrderID {
			return fmt.Errorf("expected order id %d, got %+v", pacttest.ExistingOrderID, fetched)
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %d", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		return nil
	})
	require.NoError(t, err)
}

// orderRequestMatcher covers every key the client sends for o. Quantities match exactly
// so the valid and the empty-line placements stay distinct interactions.
func orderRequestMatcher(o orderPayload) matchers.Map {
	lines := make([]any, 0, len(o.Details))
	for _, d := range o.Details {
		lines = append(lines, matchers.Map{
			"productId": matchers.Like(d.ProductID),
			"unitPrice": matchers.Like(d.UnitPrice),
			"quantity":  d.Quantity,
			"discount":  matchers.Like(d.Discount),
		})
	}
	return matchers.Map{
		"customerId":     matchers.Term(o.CustomerID, "^[A-Za-z0-9]{1,5}$"),
		"employeeId":     matchers.Like(o.EmployeeID),
		"shipVia":        matchers.Like(o.ShipVia),
		"orderDate":      matchers.Like(o.OrderDate),
		"requiredDate":   matchers.Like(o.RequiredDate),
		"freight":        matchers.Like(o.Freight),
		"shipName":       matchers.Like(o.ShipName),
		"shipAddress":    matchers.Like(o.ShipAddress),
		"shipCity":       matchers.Like(o.ShipCity),
		"shipPostalCode": matchers.Like(o.ShipPostalCode),
		"shipCountry":    matchers.Like(o.ShipCountry),
		"details":        lines,
	}
}

type orderClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrderClient(config pactconsumer.MockServerConfig) *orderClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &orderClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *orderClient) PlaceOrder(ctx context.Context, order orderPayload) (*orderPayload, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *orderClient) GetOrder(ctx context.Context, id int64) (*orderPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/orders/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *orderClient) do(req *http.Request) (*orderPayload, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload orderPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status:  status,
		problem: problem.Type,
		title:   problem.Title,
		detail:  problem.Detail,
	}
}
