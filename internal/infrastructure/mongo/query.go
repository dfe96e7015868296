package mongo

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rohn-shah/diode-be/internal/domain/repository"
)

// buildListFilter translates a react-admin list query into a Mongo filter.
// Unknown filter keys are ignored; malformed ids match nothing.
func buildListFilter(spec repository.ResourceSpec, q repository.ListQuery) bson.D {
	filter := bson.D{}

	ids := append([]string(nil), q.IDs...)
	ids = append(ids, q.Filters["id"]...)
	if len(ids) > 0 {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: objectIDs(ids)}}})
	}

	if s := strings.TrimSpace(q.Q); s != "" && len(spec.SearchFields) > 0 {
		or := bson.A{}
		for _, f := range spec.SearchFields {
			or = append(or, bson.D{{Key: f, Value: containsRegex(s)}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		if k != "id" && spec.Filterable(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := q.Filters[k]
		if len(values) == 0 {
			continue
		}
		switch {
		case spec.ObjectID(k):
			filter = append(filter, bson.E{Key: k, Value: bson.D{{Key: "$in", Value: objectIDs(values)}}})
		case spec.Regex(k):
			if len(values) == 1 {
				filter = append(filter, bson.E{Key: k, Value: containsRegex(values[0])})
				continue
			}
			rx := bson.A{}
			for _, v := range values {
				rx = append(rx, primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"})
			}
			filter = append(filter, bson.E{Key: k, Value: bson.D{{Key: "$in", Value: rx}}})
		default:
			if len(values) == 1 {
				filter = append(filter, bson.E{Key: k, Value: scalar(values[0])})
				continue
			}
			in := bson.A{}
			for _, v := range values {
				in = append(in, scalar(v))
			}
			filter = append(filter, bson.E{Key: k, Value: bson.D{{Key: "$in", Value: in}}})
		}
	}
	return filter
}

// listOptions applies _sort/_order and _start/_end.
func listOptions(spec repository.ResourceSpec, q repository.ListQuery) *options.FindOptions {
	opts := options.Find()

	field := "_id"
	switch {
	case q.Sort == "" || q.Sort == "id":
	case q.Sort == "createdAt" || q.Sort == "updatedAt" || spec.Writable(q.Sort) || spec.Filterable(q.Sort):
		field = q.Sort
	}
	dir := 1
	if q.Desc {
		dir = -1
	}
	opts.SetSort(bson.D{{Key: field, Value: dir}})

	if q.Start > 0 {
		opts.SetSkip(q.Start)
	}
	if q.End > q.Start {
		opts.SetLimit(q.End - q.Start)
	}
	return opts
}

func containsRegex(s string) bson.D {
	return bson.D{{Key: "$regex", Value: regexp.QuoteMeta(s)}, {Key: "$options", Value: "i"}}
}

func objectIDs(ids []string) bson.A {
	out := bson.A{}
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id)); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// scalar keeps strings as-is except for booleans, which react-admin sends as text.
func scalar(v string) any {
	if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
		return b
	}
	return v
}
