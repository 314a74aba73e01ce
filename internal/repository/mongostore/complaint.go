package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

type complaintDoc struct {
	ID            bson.ObjectID `bson:"_id"`
	BusNumber     string        `bson:"busNumber"`
	RouteNumber   string        `bson:"routeNumber"`
	ComplaintType string        `bson:"complaintType"`
	Description   string        `bson:"description"`
	Location      string        `bson:"location"`
	Date          string        `bson:"date"`
	Status        string        `bson:"status"`
	Remarks       string        `bson:"remarks"`
	UserEmail     string        `bson:"user_email"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

func (d *complaintDoc) toModel() model.Complaint {
	return model.Complaint{
		ID:            d.ID.Hex(),
		BusNumber:     d.BusNumber,
		RouteNumber:   d.RouteNumber,
		ComplaintType: d.ComplaintType,
		Description:   d.Description,
		Location:      d.Location,
		Date:          d.Date,
		Status:        d.Status,
		Remarks:       d.Remarks,
		UserEmail:     d.UserEmail,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func (s *Store) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	doc := complaintDoc{
		ID:            bson.NewObjectID(),
		BusNumber:     c.BusNumber,
		RouteNumber:   c.RouteNumber,
		ComplaintType: c.ComplaintType,
		Description:   c.Description,
		Location:      c.Location,
		Date:          c.Date,
		Status:        c.Status,
		Remarks:       c.Remarks,
		UserEmail:     c.UserEmail,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if _, err := s.col(ColComplaints).InsertOne(ctx, doc); err != nil {
		return wrapError(err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (s *Store) FindDuplicate(ctx context.Context, q repository.DuplicateQuery) (*model.Complaint, error) {
	filter := bson.D{
		{Key: "busNumber", Value: q.BusNumber},
		{Key: "routeNumber", Value: q.RouteNumber},
		{Key: "complaintType", Value: q.ComplaintType},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "created_at", Value: bson.D{
				{Key: "$gte", Value: q.WindowStart},
				{Key: "$lt", Value: q.WindowEnd},
			}}},
			bson.D{{Key: "date", Value: q.Date}},
		}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	doc, err := findOne[complaintDoc](ctx, s.col(ColComplaints), filter, opts)
	if err != nil || doc == nil {
		return nil, err
	}
	c := doc.toModel()
	return &c, nil
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*model.Complaint, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	doc, err := findOne[complaintDoc](ctx, s.col(ColComplaints), bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, repository.ErrNotFound
	}
	c := doc.toModel()
	return &c, nil
}

func (s *Store) ListComplaints(ctx context.Context, f repository.ComplaintFilter) ([]model.Complaint, error) {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if f.Type != "" {
		filter = append(filter, bson.E{Key: "complaintType", Value: f.Type})
	}
	if f.UserEmail != "" {
		filter = append(filter, bson.E{Key: "user_email", Value: f.UserEmail})
	}
	if f.StartDate != "" || f.EndDate != "" {
		rng := bson.D{}
		if f.StartDate != "" {
			rng = append(rng, bson.E{Key: "$gte", Value: f.StartDate})
		}
		if f.EndDate != "" {
			rng = append(rng, bson.E{Key: "$lte", Value: f.EndDate})
		}
		filter = append(filter, bson.E{Key: "date", Value: rng})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	docs, err := findMany[complaintDoc](ctx, s.col(ColComplaints), filter, opts)
	if err != nil {
		return nil, err
	}
	out := make([]model.Complaint, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func (s *Store) UpdateComplaintStatus(ctx context.Context, id, status, remarks string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	return updateFields(ctx, s.col(ColComplaints),
		bson.D{{Key: "_id", Value: oid}},
		bson.D{
			{Key: "status", Value: status},
			{Key: "remarks", Value: remarks},
			{Key: "updated_at", Value: at},
		})
}

func (s *Store) ComplaintStats(ctx context.Context) (model.ComplaintStats, error) {
	var st model.ComplaintStats
	total, err := s.col(ColComplaints).CountDocuments(ctx, bson.D{})
	if err != nil {
		return st, wrapError(err)
	}
	st.Total = total
	if st.StatusDistribution, err = s.groupCount(ctx, "status"); err != nil {
		return st, err
	}
	if st.TypeDistribution, err = s.groupCount(ctx, "complaintType"); err != nil {
		return st, err
	}
	return st, nil
}

func (s *Store) groupCount(ctx context.Context, field string) ([]model.Bucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.col(ColComplaints).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	out := []model.Bucket{}
	for cursor.Next(ctx) {
		var row struct {
			Value string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, model.Bucket{Value: row.Value, Count: row.Count})
	}
	return out, cursor.Err()
}
