package model

import (
	"errors"
	"strings"
)

// Node is one configured automation worker as reported by the panel API.
// Configuration fields are operator-supplied at creation; IsActive and
// StatusMessage are server-owned and only ever change via a full snapshot.
type Node struct {
	ID             int64  `json:"id"`
	FullName       string `json:"nama_lengkap"`
	NIK            string `json:"nik"`
	Phone          string `json:"no_hp"`
	Email          string `json:"email"`
	TargetLocation string `json:"target_location"`
	TargetDate     string `json:"target_date"`
	Proxy          string `json:"proxy,omitempty"`
	IsActive       bool   `json:"is_active"`
	StatusMessage  string `json:"status_message"`
}

// CreateNodeRequest carries the configuration tuple for a new node.
// Password is write-only: the server never returns it.
type CreateNodeRequest struct {
	FullName       string `json:"nama_lengkap"`
	NIK            string `json:"nik"`
	Phone          string `json:"no_hp"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	TargetLocation string `json:"target_location"`
	TargetDate     string `json:"target_date"`
	Proxy          string `json:"proxy,omitempty"`
}

// Validate performs presence checks only. Business validation (NIK
// format, reachable proxy, bookable date) belongs to the server.
func (r CreateNodeRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return errors.New("full name is required")
	}
	if strings.TrimSpace(r.NIK) == "" {
		return errors.New("nik is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return errors.New("phone number is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return errors.New("password is required")
	}
	if strings.TrimSpace(r.TargetLocation) == "" {
		return errors.New("target location is required")
	}
	return nil
}
