package webhook

import (
	"context"
	"log"
	"strconv"
	"strings"

	"bitrix_activity/internal/bitrix"
	"bitrix_activity/internal/titles"
)

// Events this service acts on; everything else is logged and ignored.
const (
	EventDealAdd       = "ONCRMDEALADD"
	EventDealUpdate    = "ONCRMDEALUPDATE"
	EventDealDelete    = "ONCRMDEALDELETE"
	EventCompanyDelete = "ONCRMCOMPANYDELETE"
)

type CRM interface {
	GetDeal(ctx context.Context, id string) (bitrix.Deal, error)
	GetCompany(ctx context.Context, id string) (bitrix.Company, error)
	UpdateDealTitle(ctx context.Context, id, title string) error
}

type Store interface {
	UpsertDealActivity(ctx context.Context, d bitrix.Deal) error
	DeleteDealActivity(ctx context.Context, dealID int64) (int64, error)
	DeleteCompany(ctx context.Context, companyID int64) (int64, error)
	CompanyTag(ctx context.Context, companyID int64) (string, error)
	SaveCompany(ctx context.Context, companyID int64, name, tag string) error
	NextDealSequence(ctx context.Context, companyID int64) (int64, error)
}

// Service routes one webhook notification through enrichment, title rules
// and persistence. All failures stay local to the event being handled; the
// HTTP 200 has already been sent by the time HandleEvent runs.
type Service struct {
	crm   CRM
	store Store
}

func NewService(crm CRM, store Store) *Service {
	return &Service{crm: crm, store: store}
}

func (s *Service) HandleEvent(ctx context.Context, p Payload) {
	if p.Event == "" {
		log.Printf("webhook: no event in payload, ignoring")
		return
	}
	if p.ID == "" {
		log.Printf("webhook: event %s without entity id, ignoring", p.Event)
		return
	}

	switch p.Event {
	case EventDealDelete:
		s.handleDealDelete(ctx, p.ID)
	case EventDealAdd, EventDealUpdate:
		s.handleDealUpsert(ctx, p.Event, p.ID)
	case EventCompanyDelete:
		s.handleCompanyDelete(ctx, p.ID)
	default:
		log.Printf("webhook: no action configured for event %s, ignoring", p.Event)
	}
}

func (s *Service) handleDealDelete(ctx context.Context, id string) {
	dealID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		log.Printf("webhook: deal id %q is not numeric, ignoring delete", id)
		return
	}

	rows, err := s.store.DeleteDealActivity(ctx, dealID)
	if err != nil {
		log.Printf("webhook: delete deal %d: %v", dealID, err)
		return
	}
	if rows > 0 {
		log.Printf("webhook: deal %d removed from deal_activity", dealID)
	} else {
		log.Printf("webhook: deal %d not present in deal_activity, nothing to delete", dealID)
	}
}

func (s *Service) handleCompanyDelete(ctx context.Context, id string) {
	companyID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		log.Printf("webhook: company id %q is not numeric, ignoring delete", id)
		return
	}

	rows, err := s.store.DeleteCompany(ctx, companyID)
	if err != nil {
		log.Printf("webhook: delete company %d: %v", companyID, err)
		return
	}
	if rows > 0 {
		log.Printf("webhook: company %d removed from tag cache", companyID)
	} else {
		log.Printf("webhook: company %d not present in tag cache, nothing to delete", companyID)
	}
}

func (s *Service) handleDealUpsert(ctx context.Context, event, id string) {
	deal, err := s.crm.GetDeal(ctx, id)
	if err != nil {
		log.Printf("webhook: fetch deal %s: %v, aborting event %s", id, err, event)
		return
	}

	changed := false

	// Tag titles apply to freshly created deals only; re-numbering on
	// update would advance the sequence on every redelivery.
	if event == EventDealAdd && hasCompany(deal.CompanyID) {
		if title, ok := s.sequentialTitle(ctx, deal.CompanyID); ok {
			deal.Title = title
			changed = true
		}
	}

	if title, ok := titles.ApplyPriorityMarker(deal.Title, deal.Priority); ok {
		deal.Title = title
		changed = true
	}

	// One push regardless of how many rules fired.
	if changed {
		if err := s.crm.UpdateDealTitle(ctx, deal.ID, deal.Title); err != nil {
			log.Printf("webhook: push title for deal %s: %v, persisting local title anyway", deal.ID, err)
		}
	}

	if err := s.store.UpsertDealActivity(ctx, deal); err != nil {
		log.Printf("webhook: store deal %s: %v", deal.ID, err)
		return
	}
	log.Printf("webhook: deal %s stored (event=%s title_changed=%v)", deal.ID, event, changed)
}

// sequentialTitle resolves the company tag (cache first, Bitrix on miss)
// and produces the next "{tag} {n}" title. Any failure skips the automation
// without aborting the rest of deal processing.
func (s *Service) sequentialTitle(ctx context.Context, companyIDStr string) (string, bool) {
	companyID, err := strconv.ParseInt(companyIDStr, 10, 64)
	if err != nil {
		log.Printf("webhook: company id %q is not numeric, skipping tag automation", companyIDStr)
		return "", false
	}

	tag, err := s.store.CompanyTag(ctx, companyID)
	if err != nil {
		log.Printf("webhook: look up company %d tag: %v, skipping tag automation", companyID, err)
		return "", false
	}

	if tag == "" {
		company, err := s.crm.GetCompany(ctx, companyIDStr)
		if err != nil {
			log.Printf("webhook: fetch company %d: %v, skipping tag automation", companyID, err)
			return "", false
		}
		tag = strings.TrimSpace(company.Tag)
		if tag == "" {
			log.Printf("webhook: company %d has no tag field, title stays as is", companyID)
			return "", false
		}
		if err := s.store.SaveCompany(ctx, companyID, company.Title, tag); err != nil {
			log.Printf("webhook: cache company %d: %v, skipping tag automation", companyID, err)
			return "", false
		}
		log.Printf("webhook: company %d cached with tag %q", companyID, tag)
	}

	seq, err := s.store.NextDealSequence(ctx, companyID)
	if err != nil {
		log.Printf("webhook: advance sequence for company %d: %v, skipping tag automation", companyID, err)
		return "", false
	}

	return titles.Sequential(tag, seq), true
}

func hasCompany(id string) bool {
	return id != "" && id != "0"
}
