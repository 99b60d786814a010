package transform

// Request runs the outgoing pipeline: field filtering, camelCase to
// snake_case key conversion, date formatting, boolean and number coercion,
// then optional nil/empty stripping.
func Request(rec Record, cfg Config) Record {
	if rec == nil {
		return nil
	}
	filtered := rec
	if len(cfg.ExcludeFields) > 0 {
		filtered = asRecord(filterKeys(filtered, nameSet(cfg.ExcludeFields), false, 0))
	}
	if len(cfg.IncludeFields) > 0 {
		filtered = asRecord(filterKeys(filtered, nameSet(cfg.IncludeFields), true, 0))
	}

	out := convertKeys(filtered, toSnake)
	applyCoercions(out, cfg, true, 0)

	if cfg.StripNull || cfg.StripEmpty {
		out = asRecord(stripValues(out, cfg.StripNull, cfg.StripEmpty, 0))
	}
	return out
}

// Response runs the incoming pipeline: snake_case to camelCase key
// conversion and coercions, with dates parsed into time.Time values.
// Field filtering and nil stripping are request-side concerns and are not
// applied here.
func Response(rec Record, cfg Config) Record {
	if rec == nil {
		return nil
	}
	out := convertKeys(rec, toCamel)
	applyCoercions(out, cfg, false, 0)
	return out
}

// ResponseList applies Response to each record.
func ResponseList(recs []Record, cfg Config) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = Response(rec, cfg)
	}
	return out
}

// nameSet normalizes configured field names to snake_case so matching is
// independent of which casing convention the record currently uses.
func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[toSnake(n)] = struct{}{}
	}
	return set
}

func matches(set map[string]struct{}, key string) bool {
	_, ok := set[toSnake(key)]
	return ok
}

func asRecord(v any) Record {
	if rec, ok := v.(Record); ok {
		return rec
	}
	return nil
}

// filterKeys removes (keep=false) or retains (keep=true) the named keys at
// every nesting level.
func filterKeys(v any, names map[string]struct{}, keep bool, depth int) any {
	if depth >= MaxDepth {
		return v
	}
	switch t := v.(type) {
	case Record:
		out := make(Record, len(t))
		for k, child := range t {
			if matches(names, k) != keep {
				continue
			}
			out[k] = filterKeys(child, names, keep, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = filterKeys(child, names, keep, depth+1)
		}
		return out
	default:
		return v
	}
}

// applyCoercions mutates rec in place, coercing fields named in the config
// at every nesting level. format selects outgoing date formatting versus
// incoming date parsing.
func applyCoercions(rec Record, cfg Config, format bool, depth int) {
	if rec == nil || depth >= MaxDepth {
		return
	}
	dates := nameSet(cfg.DateFields)
	bools := nameSet(cfg.BooleanFields)
	numbers := nameSet(cfg.NumberFields)
	coerceRecord(rec, dates, bools, numbers, cfg.DateFormat, format, depth)
}

func coerceRecord(rec Record, dates, bools, numbers map[string]struct{}, dateFormat string, format bool, depth int) {
	if depth >= MaxDepth {
		return
	}
	for k, v := range rec {
		switch {
		case matches(dates, k):
			if format {
				rec[k] = formatDate(v, dateFormat)
			} else {
				rec[k] = parseDate(v)
			}
		case matches(bools, k):
			rec[k] = coerceBool(v)
		case matches(numbers, k):
			rec[k] = coerceNumber(v)
		default:
			switch child := v.(type) {
			case Record:
				coerceRecord(child, dates, bools, numbers, dateFormat, format, depth+1)
			case []any:
				for _, el := range child {
					if childRec, ok := el.(Record); ok {
						coerceRecord(childRec, dates, bools, numbers, dateFormat, format, depth+1)
					}
				}
			}
		}
	}
}

// stripValues removes nil values (stripNull) and empty strings or emptied
// containers (stripEmpty), recursively. Array elements that strip down to
// nil are dropped from the array.
func stripValues(v any, stripNull, stripEmpty bool, depth int) any {
	if depth >= MaxDepth {
		return v
	}
	switch t := v.(type) {
	case Record:
		out := make(Record, len(t))
		for k, child := range t {
			sv := stripValues(child, stripNull, stripEmpty, depth+1)
			if dropValue(sv, stripNull, stripEmpty) {
				continue
			}
			out[k] = sv
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, child := range t {
			sv := stripValues(child, stripNull, stripEmpty, depth+1)
			if dropValue(sv, stripNull, stripEmpty) {
				continue
			}
			out = append(out, sv)
		}
		return out
	default:
		return v
	}
}

func dropValue(v any, stripNull, stripEmpty bool) bool {
	if v == nil {
		return stripNull
	}
	if !stripEmpty {
		return false
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case Record:
		return len(t) == 0
	default:
		return false
	}
}
