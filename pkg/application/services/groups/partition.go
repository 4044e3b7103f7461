package groups

import (
	"strings"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// Partition assigns every buyer to exactly one customer group
type Partition struct {
	GroupA map[entities.AccountID]struct{}
	Other  map[entities.AccountID]struct{}
}

// PartitionAccounts puts buyers seen with a sub-account on any record into
// group A and every other buyer into Other
func PartitionAccounts(records []entities.SaleRecord) Partition {
	p := Partition{
		GroupA: make(map[entities.AccountID]struct{}),
		Other:  make(map[entities.AccountID]struct{}),
	}

	for _, record := range records {
		if record.HasSubAccount() {
			p.GroupA[normalizeAccount(record.Buyer)] = struct{}{}
		}
	}
	for _, record := range records {
		buyer := normalizeAccount(record.Buyer)
		if _, inA := p.GroupA[buyer]; !inA {
			p.Other[buyer] = struct{}{}
		}
	}
	return p
}

// LabelOf returns the group of a buyer
func (p Partition) LabelOf(buyer entities.AccountID) dto.GroupLabel {
	if _, inA := p.GroupA[normalizeAccount(buyer)]; inA {
		return dto.GroupA
	}
	return dto.GroupOther
}

// Count returns the number of buyers in a group
func (p Partition) Count(label dto.GroupLabel) int {
	if label == dto.GroupA {
		return len(p.GroupA)
	}
	return len(p.Other)
}

func normalizeAccount(buyer entities.AccountID) entities.AccountID {
	return entities.AccountID(strings.TrimSpace(string(buyer)))
}
