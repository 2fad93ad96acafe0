package model

import (
	"encoding/json"
	"testing"
)

func validRequest() CreateNodeRequest {
	return CreateNodeRequest{
		FullName:       "Budi Santoso",
		NIK:            "3173051234560001",
		Phone:          "081234567890",
		Email:          "budi@example.com",
		Password:       "rahasia",
		TargetLocation: "JKT-04",
		TargetDate:     "2026-09-01",
	}
}

func TestValidateRequiredFields(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	mutations := map[string]func(*CreateNodeRequest){
		"full name": func(r *CreateNodeRequest) { r.FullName = " " },
		"nik":       func(r *CreateNodeRequest) { r.NIK = "" },
		"phone":     func(r *CreateNodeRequest) { r.Phone = "" },
		"email":     func(r *CreateNodeRequest) { r.Email = "" },
		"password":  func(r *CreateNodeRequest) { r.Password = "" },
		"location":  func(r *CreateNodeRequest) { r.TargetLocation = "" },
	}
	for name, mutate := range mutations {
		req := validRequest()
		mutate(&req)
		if err := req.Validate(); err == nil {
			t.Fatalf("missing %s not rejected", name)
		}
	}

	// Proxy and date stay optional.
	req := validRequest()
	req.Proxy = ""
	req.TargetDate = ""
	if err := req.Validate(); err != nil {
		t.Fatalf("optional fields must not be required: %v", err)
	}
}

func TestNodeWireFormat(t *testing.T) {
	raw := `{
		"id": 7,
		"nama_lengkap": "Budi Santoso",
		"nik": "3173051234560001",
		"no_hp": "081234567890",
		"email": "budi@example.com",
		"target_location": "JKT-04",
		"target_date": "2026-09-01",
		"is_active": true,
		"status_message": "Hunting"
	}`

	var node Node
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if node.ID != 7 || node.FullName != "Budi Santoso" || node.Phone != "081234567890" {
		t.Fatalf("wire keys not mapped: %+v", node)
	}
	if !node.IsActive || node.StatusMessage != "Hunting" {
		t.Fatalf("server-owned fields not mapped: %+v", node)
	}
}

func TestCreateRequestNeverLeaksPasswordFromNode(t *testing.T) {
	data, err := json.Marshal(Node{ID: 1, FullName: "Budi"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]any
	_ = json.Unmarshal(data, &asMap)
	if _, ok := asMap["password"]; ok {
		t.Fatalf("node payload carries a password field: %s", data)
	}
}

func TestLocationName(t *testing.T) {
	if got := LocationName("JKT-04"); got != "Butik Emas LM - Gedung Antam" {
		t.Fatalf("LocationName(JKT-04) = %q", got)
	}
	if got := LocationName("ZZZ-99"); got != "ZZZ-99" {
		t.Fatalf("unknown code must pass through, got %q", got)
	}
}
