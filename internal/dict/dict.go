// Package dict maps Bitrix list-field option ids to their display labels.
// The dictionary is loaded once at startup and never invalidated; a process
// restart picks up option changes made on the Bitrix side.
package dict

import (
	"context"
	"fmt"
	"log"

	"bitrix_activity/internal/bitrix"
)

// Group names a tracked list field.
type Group string

const (
	GroupReturnType Group = "return_type"
	GroupDemandType Group = "demand_type"
	GroupExecutor   Group = "executor"
)

var trackedFields = map[string]Group{
	bitrix.FieldReturnType: GroupReturnType,
	bitrix.FieldDemandType: GroupDemandType,
	bitrix.FieldExecutor:   GroupExecutor,
}

type FieldsFetcher interface {
	GetDealFields(ctx context.Context) (map[string]bitrix.FieldMeta, error)
}

// Dictionary is immutable after Load returns; concurrent Translate calls
// need no locking.
type Dictionary struct {
	groups map[Group]map[string]string
}

func New() *Dictionary {
	return &Dictionary{groups: map[Group]map[string]string{}}
}

// Load populates the dictionary from crm.deal.fields. A failure leaves
// prior (possibly empty) state intact; the caller decides whether to log
// and continue. Transient fetch errors are retried with bounded backoff.
func (d *Dictionary) Load(ctx context.Context, fetcher FieldsFetcher) error {
	var fields map[string]bitrix.FieldMeta
	err := callWithRetry(ctx, 3, func(c context.Context) error {
		var ferr error
		fields, ferr = fetcher.GetDealFields(c)
		return ferr
	})
	if err != nil {
		return fmt.Errorf("load deal fields: %w", err)
	}

	groups := make(map[Group]map[string]string, len(trackedFields))
	for code, group := range trackedFields {
		meta, ok := fields[code]
		if !ok || len(meta.Items) == 0 {
			log.Printf("dict: no items for field %s, group %q stays empty", code, group)
			continue
		}
		m := make(map[string]string, len(meta.Items))
		for _, item := range meta.Items {
			if item.ID == "" {
				continue
			}
			m[item.ID] = item.Value
		}
		groups[group] = m
		log.Printf("dict: loaded %d options for group %q", len(m), group)
	}

	d.groups = groups
	return nil
}

// Translate resolves an option id to its label. Misses (unknown group,
// unknown id, empty id) report ok=false rather than failing.
func (d *Dictionary) Translate(group Group, optionID string) (string, bool) {
	if optionID == "" {
		return "", false
	}
	m, ok := d.groups[group]
	if !ok {
		return "", false
	}
	label, ok := m[optionID]
	return label, ok
}
