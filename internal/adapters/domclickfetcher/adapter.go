package domclickfetcher

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"

	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/domain"
	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// DomclickFetcherAdapter отвечает за взаимодействие с ДомКлик:
// один запрос возвращает полный XML-отчет по всем офферам аккаунта,
// отчет сканируется линейно.
type DomclickFetcherAdapter struct {
	collector *colly.Collector
	reportURL string
	token     string
}

// NewDomclickFetcherAdapter - конструктор. baseURL переопределяется в тестах.
func NewDomclickFetcherAdapter(baseURL, token, companyID string) (*DomclickFetcherAdapter, error) {
	if token == "" {
		return nil, fmt.Errorf("domclick adapter: token is required")
	}
	if companyID == "" {
		return nil, fmt.Errorf("domclick adapter: company id is required")
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(constants.RequestTimeout)

	return &DomclickFetcherAdapter{
		collector: c,
		reportURL: fmt.Sprintf("%s/%s/report/", baseURL, companyID),
		token:     token,
	}, nil
}

func (a *DomclickFetcherAdapter) Platform() domain.Platform { return domain.PlatformDomclick }

// Структуры XML-отчета Report/OfferList/Offer[]
type report struct {
	XMLName xml.Name      `xml:"Report"`
	Offers  []reportOffer `xml:"OfferList>Offer"`
}

type reportOffer struct {
	ExternalID       string   `xml:"ExternalId"`
	StatusCode       string   `xml:"Status>Code"`
	PublicationURL   string   `xml:"Publication>DomclickURL"`
	DiscountCode     string   `xml:"DiscountStatus>Code"`
	RejectionReasons []string `xml:"DiscountStatus>RejectionReasons>Reason>Descr"`
}

// Check скачивает отчет целиком и ищет офферы с нужным ExternalId в статусе
// published. XML допускает несколько номинально совпадающих элементов -
// каждый дает свой вердикт. Не-200 отдается пользователю как системная
// ошибка с сырым кодом статуса.
func (a *DomclickFetcherAdapter) Check(ctx context.Context, id domain.ListingID) ([]domain.Verdict, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "DomclickFetcherAdapter(Check)"})

	collector := a.collector.Clone()

	var status int
	var body []byte
	var transportErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Authorization", "Token "+a.token)
		logger.Debug("Making request to domclick report", port.Fields{"url": r.URL.String()})
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		if status == 0 {
			transportErr = err
		}
	})

	visitErr := collector.Visit(a.reportURL)
	collector.Wait()

	// Не-2xx приходит как ошибка Visit, статус уже снят в OnError
	if visitErr != nil && status == 0 {
		return nil, fmt.Errorf("domclick adapter: failed to visit %s: %w", a.reportURL, visitErr)
	}
	if transportErr != nil {
		return nil, fmt.Errorf("domclick adapter: request failed: %w", transportErr)
	}
	if status != http.StatusOK {
		logger.Error("Domclick report returned non-200", nil, port.Fields{"status": status})
		// Сырой код статуса уходит в текст для пользователя
		return []domain.Verdict{{
			Platform:   domain.PlatformDomclick,
			Kind:       domain.VerdictSourceError,
			Diagnostic: strconv.Itoa(status),
		}}, nil
	}

	var data report
	if err := xml.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("domclick adapter: failed to unmarshal report xml: %w", err)
	}

	var verdicts []domain.Verdict
	for _, offer := range data.Offers {
		if offer.ExternalID != id.String() || offer.StatusCode != "published" {
			continue
		}

		if offer.DiscountCode == "rejected" {
			verdicts = append(verdicts, domain.Verdict{
				Platform: domain.PlatformDomclick,
				Kind:     domain.VerdictDiscountRejected,
				URL:      offer.PublicationURL,
				Reasons:  offer.RejectionReasons,
			})
			continue
		}

		verdicts = append(verdicts, domain.Verdict{
			Platform: domain.PlatformDomclick,
			Kind:     domain.VerdictFound,
			URL:      offer.PublicationURL,
		})
	}

	if len(verdicts) == 0 {
		logger.Info("Listing not found on domclick", port.Fields{"listing_id": id.String()})
		return []domain.Verdict{{Platform: domain.PlatformDomclick, Kind: domain.VerdictNotFound}}, nil
	}
	return verdicts, nil
}
