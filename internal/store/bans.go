package store

import (
	"database/sql"
	"fmt"
	"net"
	"time"
)

// Ban is one entry in the operator ban list, the persisted form of the
// "filter"/"filtercmd addip" console commands (§6). Mask is the CIDR
// prefix length applied to Address; a single-host ban uses /32 (or /128
// for IPv6).
type Ban struct {
	ID        int64
	Address   string
	Mask      int
	Reason    string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// AddBan inserts a ban entry. expiresAt is nil for a permanent ban.
func (s *Store) AddBan(address string, mask int, reason string, expiresAt *time.Time) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO bans (address, mask, reason, expires_at) VALUES (?, ?, ?, ?)`,
		address, mask, reason, expiresAt)
	if err != nil {
		return 0, fmt.Errorf("store: add ban: %w", err)
	}
	return res.LastInsertId()
}

// RemoveBan deletes a ban by id, the "filtercmd removeip" counterpart.
func (s *Store) RemoveBan(id int64) error {
	_, err := s.db.Exec(`DELETE FROM bans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: remove ban: %w", err)
	}
	return nil
}

// ListBans returns every ban entry ordered by creation time, the
// "filtercmd banlist" counterpart.
func (s *Store) ListBans() ([]Ban, error) {
	rows, err := s.db.Query(`SELECT id, address, mask, reason, created_at, expires_at FROM bans ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("store: list bans: %w", err)
	}
	defer rows.Close()

	var bans []Ban
	for rows.Next() {
		var b Ban
		if err := rows.Scan(&b.ID, &b.Address, &b.Mask, &b.Reason, &b.CreatedAt, &b.ExpiresAt); err != nil {
			return nil, fmt.Errorf("store: scan ban: %w", err)
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}

// IsBanned reports whether ip falls under any non-expired ban's
// address/mask, and the matching Ban if so. An address recorded with
// AddException is never reported as banned.
func (s *Store) IsBanned(ip net.IP, now time.Time) (*Ban, error) {
	excepted, err := s.IsException(ip.String())
	if err != nil {
		return nil, err
	}
	if excepted {
		return nil, nil
	}
	bans, err := s.ListBans()
	if err != nil {
		return nil, err
	}
	for i := range bans {
		b := &bans[i]
		if b.ExpiresAt != nil && now.After(*b.ExpiresAt) {
			continue
		}
		network := net.ParseIP(b.Address)
		if network == nil {
			continue
		}
		_, subnet, err := net.ParseCIDR(fmt.Sprintf("%s/%d", b.Address, b.Mask))
		if err != nil {
			continue
		}
		if subnet.Contains(ip) {
			return b, nil
		}
	}
	return nil, nil
}

// AddException whitelists address against the ban list, e.g. for
// operator-trusted IPs that must never be caught by a broad /24 ban.
func (s *Store) AddException(address string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO filter_exceptions (address) VALUES (?)`, address)
	if err != nil {
		return fmt.Errorf("store: add exception: %w", err)
	}
	return nil
}

// IsException reports whether address is explicitly excepted from the
// ban list.
func (s *Store) IsException(address string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM filter_exceptions WHERE address = ?`, address).Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("store: check exception: %w", err)
	}
	return n > 0, nil
}
