package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cast"

	"github.com/garyjia/tkdn-compliance/internal/application/service"
	"github.com/garyjia/tkdn-compliance/internal/domain/apperr"
	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

// Clients send item and PPK fields in snake_case or camelCase. Everything past this file
// sees only the canonical structs.
var (
	ppkKeys = []string{"ppk_info", "ppkInfo", "ppk"}

	ppkAliases = map[string][]string{
		"name":        {"name"},
		"national_id": {"national_id", "nationalId", "nik"},
		"email":       {"email"},
		"phone":       {"phone"},
		"work_unit":   {"work_unit", "workUnit"},
		"position":    {"position"},
	}

	itemAliases = map[string][]string{
		"name":                   {"name"},
		"quantity":               {"quantity", "qty"},
		"unit":                   {"unit"},
		"brand":                  {"brand"},
		"model":                  {"model"},
		"specification":          {"specification", "spec"},
		"category":               {"category"},
		"final_price":            {"final_price", "finalPrice"},
		"foreign_price":          {"foreign_price", "foreignPrice"},
		"domestic_value_percent": {"domestic_value_percent", "domesticValuePercent", "bmp"},
	}
)

// submissionPayload is the normalized JSON part of a create request
type submissionPayload struct {
	PPK   entity.PPKInfo
	Items []service.ItemInput
}

func decodeSubmissionPayload(raw []byte) (*submissionPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, apperr.Validation("payload is not a JSON object: %v", err)
	}

	ppkRaw, err := pick(body, ppkKeys)
	if err != nil {
		return nil, err
	}
	ppkFields, ok := ppkRaw.(map[string]interface{})
	if !ok {
		return nil, apperr.Validation("ppk_info must be an object")
	}
	ppk, err := normalizePPK(ppkFields)
	if err != nil {
		return nil, err
	}

	itemsRaw, ok := body["items"].([]interface{})
	if !ok && body["items"] != nil {
		return nil, apperr.Validation("items must be an array")
	}
	items := make([]service.ItemInput, 0, len(itemsRaw))
	for i, raw := range itemsRaw {
		fields, ok := raw.(map[string]interface{})
		if !ok {
			return nil, apperr.Validation("item %d must be an object", i+1)
		}
		item, err := normalizeItem(fields)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}

	return &submissionPayload{PPK: ppk, Items: items}, nil
}

func normalizePPK(fields map[string]interface{}) (entity.PPKInfo, error) {
	var (
		ppk entity.PPKInfo
		err error
	)
	str := func(canonical string) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = stringField(fields, canonical, ppkAliases[canonical])
		return s
	}

	ppk.Name = str("name")
	ppk.NationalID = str("national_id")
	ppk.Email = str("email")
	ppk.Phone = str("phone")
	ppk.WorkUnit = str("work_unit")
	ppk.Position = str("position")
	return ppk, err
}

func normalizeItem(fields map[string]interface{}) (service.ItemInput, error) {
	var item service.ItemInput
	var err error

	str := func(canonical string) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = stringField(fields, canonical, itemAliases[canonical])
		return s
	}
	num := func(canonical string) float64 {
		if err != nil {
			return 0
		}
		var f float64
		f, err = numberField(fields, canonical, itemAliases[canonical])
		return f
	}

	item.Name = str("name")
	item.Unit = str("unit")
	item.Brand = str("brand")
	item.Model = str("model")
	item.Specification = str("specification")
	item.Category = str("category")
	item.FinalPrice = num("final_price")
	item.ForeignPrice = num("foreign_price")
	item.DomesticValuePercent = num("domestic_value_percent")

	quantity := num("quantity")
	if err != nil {
		return item, err
	}
	if quantity != math.Trunc(quantity) || quantity > math.MaxInt32 {
		return item, apperr.Validation("quantity must be a whole number")
	}
	item.Quantity = int(quantity)

	return item, nil
}

// pick returns the value under the first present alias; two aliases carrying different values is an error
func pick(fields map[string]interface{}, aliases []string) (interface{}, error) {
	var (
		found interface{}
		from  string
	)
	for _, key := range aliases {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if from != "" && fmt.Sprint(v) != fmt.Sprint(found) {
			return nil, apperr.Validation("conflicting values for %s and %s", from, key)
		}
		if from == "" {
			found, from = v, key
		}
	}
	return found, nil
}

func stringField(fields map[string]interface{}, canonical string, aliases []string) (string, error) {
	v, err := pick(fields, aliases)
	if err != nil || v == nil {
		return "", err
	}
	if _, isObject := v.(map[string]interface{}); isObject {
		return "", apperr.Validation("%s must be a string", canonical)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", apperr.Validation("%s must be a string", canonical)
	}
	return s, nil
}

func numberField(fields map[string]interface{}, canonical string, aliases []string) (float64, error) {
	v, err := pick(fields, aliases)
	if err != nil || v == nil {
		return 0, err
	}
	if _, isBool := v.(bool); isBool {
		return 0, apperr.Validation("%s must be a number", canonical)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperr.Validation("%s must be a number", canonical)
	}
	return f, nil
}
