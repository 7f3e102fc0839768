// Package patient is the read-mostly directory the scheduling core consults
// to denormalize patient names at booking time. The core never mutates
// patient records; writes exist only for seeding and admin imports.
package patient

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
)

const storageKey = "dental:patients"

var ErrPatientNotFound = errors.New("patient not found")

type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Directory is a KV-backed patient lookup.
type Directory struct {
	mu       sync.RWMutex
	store    kv.Store
	log      zerolog.Logger
	patients map[string]Patient
}

func NewDirectory(ctx context.Context, store kv.Store, log zerolog.Logger) *Directory {
	d := &Directory{
		store:    store,
		log:      log.With().Str("component", "patients").Logger(),
		patients: make(map[string]Patient),
	}

	raw, err := store.Get(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			d.log.Warn().Err(err).Msg("load patients failed, starting empty")
		}
		return d
	}

	var list []Patient
	if err := json.Unmarshal(raw, &list); err != nil {
		d.log.Warn().Err(err).Msg("corrupt patients payload, starting empty")
		return d
	}
	for _, p := range list {
		d.patients[p.ID] = p
	}
	return d
}

// Lookup returns the patient record for id.
func (d *Directory) Lookup(id string) (Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.patients[id]
	if !ok {
		return Patient{}, ErrPatientNotFound
	}
	return p, nil
}

// All returns every patient sorted by name.
func (d *Directory) All() []Patient {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Patient, 0, len(d.patients))
	for _, p := range d.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Put upserts one patient record and flushes the directory.
func (d *Directory) Put(ctx context.Context, p Patient) {
	d.mu.Lock()
	d.patients[p.ID] = p
	list := make([]Patient, 0, len(d.patients))
	for _, rec := range d.patients {
		list = append(list, rec)
	}
	d.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	raw, err := json.Marshal(list)
	if err != nil {
		d.log.Error().Err(err).Msg("marshal patients")
		return
	}
	if err := d.store.Set(ctx, storageKey, raw); err != nil {
		d.log.Error().Err(err).Msg("persist patients")
	}
}
