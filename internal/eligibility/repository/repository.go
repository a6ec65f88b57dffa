// Package repository loads matching inputs and persists client-evaluator
// links.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinic_sync_backend/internal/eligibility"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EvaluatorProfiles loads the full roster with insurance acceptance and
// blocked district, zip, and office lists attached.
func (r *Repository) EvaluatorProfiles(ctx context.Context) ([]eligibility.EvaluatorProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT npi, provider_name
		FROM emr_evaluator
		ORDER BY npi
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byNPI := make(map[int64]*eligibility.EvaluatorProfile)
	var order []int64
	for rows.Next() {
		var p eligibility.EvaluatorProfile
		if err := rows.Scan(&p.NPI, &p.Name); err != nil {
			return nil, err
		}
		p.Insurances = make(map[eligibility.InsuranceCode]bool)
		byNPI[p.NPI] = &p
		order = append(order, p.NPI)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if err := r.attachInsurances(ctx, byNPI); err != nil {
		return nil, err
	}
	if err := r.attachList(ctx, byNPI, `
		SELECT bsd.evaluator_npi, sd.full_name
		FROM emr_blocked_school_district bsd
		JOIN emr_school_district sd ON sd.id = bsd.school_district_id
	`, func(p *eligibility.EvaluatorProfile, v string) {
		p.BlockedDistricts = append(p.BlockedDistricts, v)
	}); err != nil {
		return nil, err
	}
	if err := r.attachList(ctx, byNPI, `
		SELECT evaluator_npi, zip_code FROM emr_blocked_zip_code
	`, func(p *eligibility.EvaluatorProfile, v string) {
		p.BlockedZips = append(p.BlockedZips, v)
	}); err != nil {
		return nil, err
	}
	if err := r.attachList(ctx, byNPI, `
		SELECT evaluator_npi, office_name FROM emr_blocked_office
	`, func(p *eligibility.EvaluatorProfile, v string) {
		p.BlockedOffices = append(p.BlockedOffices, v)
	}); err != nil {
		return nil, err
	}

	profiles := make([]eligibility.EvaluatorProfile, 0, len(order))
	for _, npi := range order {
		profiles = append(profiles, *byNPI[npi])
	}
	return profiles, nil
}

func (r *Repository) attachInsurances(ctx context.Context, byNPI map[int64]*eligibility.EvaluatorProfile) error {
	rows, err := r.pool.Query(ctx, `
		SELECT evaluator_npi, insurance_code
		FROM emr_evaluator_insurance
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var npi int64
		var code string
		if err := rows.Scan(&npi, &code); err != nil {
			return err
		}
		if p, ok := byNPI[npi]; ok {
			p.Insurances[eligibility.InsuranceCode(code)] = true
		}
	}
	return rows.Err()
}

func (r *Repository) attachList(ctx context.Context, byNPI map[int64]*eligibility.EvaluatorProfile, query string, add func(*eligibility.EvaluatorProfile, string)) error {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var npi int64
		var value string
		if err := rows.Scan(&npi, &value); err != nil {
			return err
		}
		if p, ok := byNPI[npi]; ok {
			add(p, value)
		}
	}
	return rows.Err()
}

// InsuranceCodes returns every canonical code the roster accepts, for
// validating policy aliases before a run touches any links.
func (r *Repository) InsuranceCodes(ctx context.Context) (map[eligibility.InsuranceCode]struct{}, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT insurance_code FROM emr_evaluator_insurance
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[eligibility.InsuranceCode]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[eligibility.InsuranceCode(code)] = struct{}{}
	}
	return codes, rows.Err()
}

// Clients loads matching inputs for every client. "Unknown"-style sentinel
// strings from the upstream export collapse into nil here so the matcher
// only ever sees one representation of "absent".
func (r *Repository) Clients(ctx context.Context) ([]eligibility.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT client_id, private_pay, primary_insurance, secondary_insurance,
		       school_district, zip_code, birth_date, closest_office
		FROM emr_client
		ORDER BY client_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []eligibility.Client
	for rows.Next() {
		var c eligibility.Client
		var primary, secondary, district, zip, office *string
		var birthDate *time.Time
		if err := rows.Scan(&c.ID, &c.PrivatePay, &primary, &secondary, &district, &zip, &birthDate, &office); err != nil {
			return nil, err
		}
		c.PrimaryInsurance = collapseSentinel(primary)
		c.SecondaryInsurances = splitInsurances(secondary)
		c.SchoolDistrict = collapseSentinel(district)
		c.Zip = collapseSentinel(zip)
		c.BirthDate = birthDate
		c.ClosestOffice = collapseSentinel(office)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Links loads the persisted client-evaluator link table as a per-client set.
func (r *Repository) Links(ctx context.Context) (map[int64]eligibility.NPISet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT client_id, evaluator_npi FROM emr_client_eval
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make(map[int64]eligibility.NPISet)
	for rows.Next() {
		var clientID, npi int64
		if err := rows.Scan(&clientID, &npi); err != nil {
			return nil, err
		}
		set, ok := links[clientID]
		if !ok {
			set = make(eligibility.NPISet)
			links[clientID] = set
		}
		set[npi] = struct{}{}
	}
	return links, rows.Err()
}

func (r *Repository) InsertLink(ctx context.Context, clientID, npi int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO emr_client_eval (client_id, evaluator_npi)
		VALUES ($1, $2)
		ON CONFLICT (client_id, evaluator_npi) DO NOTHING
	`, clientID, npi)
	return err
}

func (r *Repository) DeleteLink(ctx context.Context, clientID, npi int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM emr_client_eval
		WHERE client_id = $1 AND evaluator_npi = $2
	`, clientID, npi)
	return err
}

func (r *Repository) DeleteLinksForClient(ctx context.Context, clientID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM emr_client_eval WHERE client_id = $1
	`, clientID)
	return err
}

// sentinel values the upstream export writes where it means "no value".
var sentinels = map[string]struct{}{
	"unknown": {},
	"n/a":     {},
	"no":      {},
	"none":    {},
}

func collapseSentinel(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	if _, isSentinel := sentinels[strings.ToLower(trimmed)]; isSentinel {
		return nil
	}
	return &trimmed
}

// splitInsurances splits the comma-separated secondary insurance column.
func splitInsurances(value *string) []string {
	collapsed := collapseSentinel(value)
	if collapsed == nil {
		return nil
	}
	var names []string
	for _, part := range strings.Split(*collapsed, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
