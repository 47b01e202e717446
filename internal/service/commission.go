package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/model"
	"github.com/retailtally/backend/internal/store"
)

// ActivationRates are flat dollar payouts per activation, keyed by the plan
// price band the activation fell into.
type ActivationRates struct {
	Type30 float64 `json:"type30"`
	Type40 float64 `json:"type40"`
	Type55 float64 `json:"type55"`
	Type60 float64 `json:"type60"`
}

// CommissionTier is one row of the commission table. An employee's tier for
// a period is the highest tier whose accessory target their accessory
// revenue met.
type CommissionTier struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	AccessoryTarget float64         `json:"accessoryTarget"`
	AccessoryRate   float64         `json:"accessoryRate"`
	ActivationRates ActivationRates `json:"activationRates"`
	UpgradeRate     float64         `json:"upgradeRate"`
	CPRate          float64         `json:"cpRate"`
	APORate         float64         `json:"apoRate"`
}

// defaultTiers is the store's standard four-tier commission structure.
var defaultTiers = []CommissionTier{
	{
		ID: 1, Name: "Tier 1",
		AccessoryTarget: 500, AccessoryRate: 0.08,
		ActivationRates: ActivationRates{Type30: 10, Type40: 15, Type55: 20, Type60: 25},
		UpgradeRate:     10, CPRate: 15, APORate: 0.10,
	},
	{
		ID: 2, Name: "Tier 2",
		AccessoryTarget: 750, AccessoryRate: 0.10,
		ActivationRates: ActivationRates{Type30: 12, Type40: 18, Type55: 25, Type60: 30},
		UpgradeRate:     12, CPRate: 18, APORate: 0.12,
	},
	{
		ID: 3, Name: "Tier 3",
		AccessoryTarget: 1000, AccessoryRate: 0.10,
		ActivationRates: ActivationRates{Type30: 15, Type40: 22, Type55: 30, Type60: 35},
		UpgradeRate:     15, CPRate: 20, APORate: 0.15,
	},
	{
		ID: 4, Name: "Tier 4",
		AccessoryTarget: 1750, AccessoryRate: 0.10,
		ActivationRates: ActivationRates{Type30: 18, Type40: 25, Type55: 35, Type60: 40},
		UpgradeRate:     18, CPRate: 25, APORate: 0.18,
	},
}

// ActivationCounts breaks activations down by price band.
type ActivationCounts struct {
	Type30 int `json:"type30"`
	Type40 int `json:"type40"`
	Type55 int `json:"type55"`
	Type60 int `json:"type60"`
	Total  int `json:"total"`
}

// CommissionReport is the per-employee breakdown returned by the
// commission endpoint.
type CommissionReport struct {
	EmployeeID           string           `json:"employeeId"`
	TotalSales           int              `json:"totalSales"`
	TotalAmount          float64          `json:"totalAmount"`
	TotalCommission      float64          `json:"totalCommission"`
	Tier                 int              `json:"tier"`
	TierName             string           `json:"tierName"`
	AccessoryRevenue     float64          `json:"accessoryRevenue"`
	AccessoryCommission  float64          `json:"accessoryCommission"`
	Activations          ActivationCounts `json:"activations"`
	ActivationCommission float64          `json:"activationCommission"`
	UpgradeCount         int              `json:"upgradeCount"`
	UpgradeCommission    float64          `json:"upgradeCommission"`
	CPCount              int              `json:"cpCount"`
	CPCommission         float64          `json:"cpCommission"`
	APORevenue           float64          `json:"apoRevenue"`
	APOCommission        float64          `json:"apoCommission"`
	StartDate            *time.Time       `json:"startDate,omitempty"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
	TierDetails          []CommissionTier `json:"tierDetails"`
}

// CommissionService computes commission breakdowns from recorded sales.
type CommissionService struct {
	store store.Store
	tiers []CommissionTier
}

func NewCommissionService(st store.Store) *CommissionService {
	return &CommissionService{store: st, tiers: defaultTiers}
}

// Report computes the commission breakdown for one employee over an
// optional date window. Employees can only see their own report.
func (s *CommissionService) Report(ctx context.Context, employeeID string, start, end *time.Time) (*CommissionReport, error) {
	if _, err := auth.RequireSaleAccess(ctx, employeeID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, employeeID); err != nil {
		return nil, err
	}

	filter := model.SaleFilter{EmployeeID: employeeID, StartDate: start, EndDate: end}
	var sales []*model.Sale
	var pageToken string
	for {
		page, nextToken, err := s.store.ListSales(ctx, filter, 500, pageToken)
		if err != nil {
			return nil, err
		}
		sales = append(sales, page...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	report := &CommissionReport{
		EmployeeID:  employeeID,
		TotalSales:  len(sales),
		StartDate:   start,
		EndDate:     end,
		TierDetails: s.tiers,
	}

	for _, sale := range sales {
		report.TotalAmount += sale.TotalAmount
		for _, p := range sale.Products {
			price := p.Price
			qty := p.Quantity
			if qty < 1 {
				qty = 1
			}
			lineTotal := price * float64(qty)

			switch p.Category {
			case extraction.CategoryAccessory:
				report.AccessoryRevenue += lineTotal
			case extraction.CategoryActivation:
				switch {
				case price <= 30:
					report.Activations.Type30 += qty
				case price <= 40:
					report.Activations.Type40 += qty
				case price <= 55:
					report.Activations.Type55 += qty
				default:
					report.Activations.Type60 += qty
				}
				report.Activations.Total += qty
			case extraction.CategoryUpgrade:
				report.UpgradeCount += qty
			default:
				// Protection plans and add-on protection ride on name
				// matching, same as the receipt categorizer.
				name := strings.ToLower(p.Name)
				if strings.Contains(name, "protection") || strings.Contains(name, "cp") {
					report.CPCount += qty
				} else if strings.Contains(name, "apo") && price >= 60 {
					report.APORevenue += lineTotal
				}
			}
		}
	}

	tier := s.tierFor(report.AccessoryRevenue)
	report.Tier = tier.ID
	report.TierName = tier.Name

	report.AccessoryCommission = report.AccessoryRevenue * tier.AccessoryRate
	report.ActivationCommission = float64(report.Activations.Type30)*tier.ActivationRates.Type30 +
		float64(report.Activations.Type40)*tier.ActivationRates.Type40 +
		float64(report.Activations.Type55)*tier.ActivationRates.Type55 +
		float64(report.Activations.Type60)*tier.ActivationRates.Type60
	report.UpgradeCommission = float64(report.UpgradeCount) * tier.UpgradeRate
	report.CPCommission = float64(report.CPCount) * tier.CPRate
	report.APOCommission = report.APORevenue * tier.APORate

	report.TotalCommission = round2(report.AccessoryCommission +
		report.ActivationCommission +
		report.UpgradeCommission +
		report.CPCommission +
		report.APOCommission)
	report.TotalAmount = round2(report.TotalAmount)

	return report, nil
}

// tierFor returns the highest tier whose accessory target is met. Below the
// first target the employee still earns at tier 1.
func (s *CommissionService) tierFor(accessoryRevenue float64) CommissionTier {
	for i := len(s.tiers) - 1; i >= 0; i-- {
		if accessoryRevenue >= s.tiers[i].AccessoryTarget {
			return s.tiers[i]
		}
	}
	return s.tiers[0]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
