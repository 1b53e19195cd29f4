// Package report renders, persists, and forwards portfolio reports
package report

import (
	"fmt"
	"strings"

	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/models"
)

const (
	headerLine  = "=================================================="
	sectionLine = "------------------------------"
)

// Format renders the fixed-template text report. Section order is fixed:
// banner, timestamp, holdings, valuation with weights, grand total,
// unavailable assets (only when present), closing hint and banner.
func Format(portfolio *models.Portfolio, v *models.Valuation) string {
	var sb strings.Builder

	sb.WriteString("🤖 АВТООТЧЕТ ДЛЯ AI-АНАЛИТИКА\n")
	sb.WriteString(headerLine + "\n")
	sb.WriteString(fmt.Sprintf("Время: %s\n\n", v.GeneratedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString("📊 ПОРТФЕЛЬ:\n")
	sb.WriteString(sectionLine + "\n")
	for _, h := range portfolio.Holdings {
		sb.WriteString(fmt.Sprintf("%s: %d лотов\n", h.Symbol, h.Lots))
	}

	sb.WriteString("\n💰 СТОИМОСТЬ:\n")
	sb.WriteString(sectionLine + "\n")
	for _, p := range v.Positions {
		sb.WriteString(fmt.Sprintf("%s: %s RUB (%s)\n",
			p.Symbol, common.FormatMoney(p.Value), common.FormatPercent(p.WeightPct)))
	}

	sb.WriteString(fmt.Sprintf("\nВСЕГО: %s RUB\n", common.FormatMoney(v.TotalValue)))

	if len(v.Unavailable) > 0 {
		sb.WriteString("\n⚠️ НЕДОСТУПНЫЕ АКТИВЫ:\n")
		sb.WriteString(sectionLine + "\n")
		for _, h := range v.Unavailable {
			sb.WriteString(fmt.Sprintf("%s: %d лотов (нет данных)\n", h.Symbol, h.Lots))
		}
	}

	sb.WriteString("\n🎯 Отправьте этот отчет AI-аналитику для рекомендаций\n")
	sb.WriteString(headerLine)

	return sb.String()
}
