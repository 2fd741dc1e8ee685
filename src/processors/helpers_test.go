// backend/src/processors/helpers_test.go
package processors

import (
	"io"
	"log/slog"

	"github.com/username/wheelfolio/backend/src/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func stockBuy(symbol, date string, qty, price float64) models.TradeRecord {
	return models.TradeRecord{
		Symbol:        strPtr(symbol),
		AssetCategory: models.AssetCategoryStock,
		BuySell:       models.SideBuy,
		Quantity:      qty,
		Price:         price,
		Proceeds:      -qty * price,
		TradeDate:     strPtr(date),
	}
}

func stockSell(symbol, date string, qty, price float64) models.TradeRecord {
	return models.TradeRecord{
		Symbol:        strPtr(symbol),
		AssetCategory: models.AssetCategoryStock,
		BuySell:       models.SideSell,
		Quantity:      qty,
		Price:         price,
		Proceeds:      qty * price,
		TradeDate:     strPtr(date),
	}
}

func putSale(underlying, date string, proceeds float64) models.TradeRecord {
	return models.TradeRecord{
		Symbol:           strPtr(underlying + " PUT"),
		UnderlyingSymbol: strPtr(underlying),
		AssetCategory:    models.AssetCategoryOption,
		BuySell:          models.SideSell,
		Quantity:         1,
		Proceeds:         proceeds,
		TradeDate:        strPtr(date),
		PutCall:          strPtr(models.PutCallPut),
	}
}

func putAssignmentLeg(underlying, date string) models.TradeRecord {
	return models.TradeRecord{
		Symbol:           strPtr(underlying + " PUT"),
		UnderlyingSymbol: strPtr(underlying),
		AssetCategory:    models.AssetCategoryOption,
		BuySell:          models.SideBuy,
		Quantity:         1,
		Proceeds:         0,
		TradeDate:        strPtr(date),
		PutCall:          strPtr(models.PutCallPut),
	}
}

func callSale(underlying, date string, proceeds float64) models.TradeRecord {
	return models.TradeRecord{
		Symbol:           strPtr(underlying + " CALL"),
		UnderlyingSymbol: strPtr(underlying),
		AssetCategory:    models.AssetCategoryOption,
		BuySell:          models.SideSell,
		Quantity:         1,
		Proceeds:         proceeds,
		TradeDate:        strPtr(date),
		PutCall:          strPtr(models.PutCallCall),
	}
}

func closedAssignment(symbol, assignmentDate, exitDate string, price, exitPrice, qty, premiums float64) models.Assignment {
	return models.Assignment{
		Symbol:             symbol,
		AssignmentDate:     assignmentDate,
		AssignmentPrice:    price,
		Quantity:           qty,
		PutPremiums:        premiums,
		TotalPremiums:      premiums,
		EffectiveBreakEven: price - premiums/qty,
		CurrentlyHeld:      false,
		ExitDate:           strPtr(exitDate),
		ExitPrice:          floatPtr(exitPrice),
	}
}

func heldAssignment(symbol, assignmentDate string, price, qty, premiums float64) models.Assignment {
	return models.Assignment{
		Symbol:             symbol,
		AssignmentDate:     assignmentDate,
		AssignmentPrice:    price,
		Quantity:           qty,
		PutPremiums:        premiums,
		TotalPremiums:      premiums,
		EffectiveBreakEven: price - premiums/qty,
		CurrentlyHeld:      true,
	}
}
