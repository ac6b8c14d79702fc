package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/formworks/formworks/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// defaultMongoDatabase is used when the URI carries no database name.
const defaultMongoDatabase = "formworks"

// Collection names for the document store.
const (
	collUsers        = "users"
	collForms        = "forms"
	collResponses    = "responses"
	collPrivateUsers = "private_users"
)

// MongoStore is the document-store implementation of Store.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect mongo: %w", err)
	}
	if errPing := client.Ping(connectCtx, readpref.Primary()); errPing != nil {
		return nil, fmt.Errorf("store: ping mongo: %w", errPing)
	}
	database := client.Database(databaseFromURI(uri))

	// Same uniqueness guarantee the relational schema carries on users.email.
	_, errIndex := database.Collection(collUsers).Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if errIndex != nil {
		return nil, fmt.Errorf("store: ensure email index: %w", errIndex)
	}
	return &MongoStore{client: client, db: database}, nil
}

// databaseFromURI extracts the database name from a Mongo connection URI.
func databaseFromURI(uri string) string {
	rest := uri
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		return defaultMongoDatabase
	}
	if idx := strings.Index(rest, "?"); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return defaultMongoDatabase
	}
	return rest
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// findOne decodes a single document, mapping ErrNoDocuments to (absent, nil).
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var row T
	errFind := coll.FindOne(ctx, filter).Decode(&row)
	if errFind != nil {
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errFind
	}
	return &row, nil
}

// findAll decodes every document matching the filter.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, errFind := coll.Find(ctx, filter, opts...)
	if errFind != nil {
		return nil, errFind
	}
	var rows []T
	if errDecode := cursor.All(ctx, &rows); errDecode != nil {
		return nil, errDecode
	}
	return rows, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.db.Collection(collUsers), bson.M{"_id": id})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	filter := bson.M{"email": primitive.Regex{Pattern: "^" + escapeRegex(email) + "$", Options: "i"}}
	return findOne[models.User](ctx, s.db.Collection(collUsers), filter)
}

func (s *MongoStore) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return findOne[models.User](ctx, s.db.Collection(collUsers), bson.M{"verification_token": token})
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection(collUsers).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	return err
}

func (s *MongoStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	_, err := s.db.Collection(collUsers).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	return err
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	formIDs, err := s.formIDsByUser(ctx, id)
	if err != nil {
		return err
	}
	if len(formIDs) > 0 {
		if _, errDel := s.db.Collection(collResponses).DeleteMany(ctx, bson.M{"form_id": bson.M{"$in": formIDs}}); errDel != nil {
			return errDel
		}
	}
	if _, errDel := s.db.Collection(collForms).DeleteMany(ctx, bson.M{"user_id": id}); errDel != nil {
		return errDel
	}
	if _, errDel := s.db.Collection(collPrivateUsers).DeleteMany(ctx, bson.M{"owner_id": id}); errDel != nil {
		return errDel
	}
	_, errDel := s.db.Collection(collUsers).DeleteOne(ctx, bson.M{"_id": id})
	return errDel
}

func (s *MongoStore) GetAllUsers(ctx context.Context, search string) ([]models.User, error) {
	filter := bson.M{}
	if search != "" {
		re := primitive.Regex{Pattern: escapeRegex(search), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"email": re},
			bson.M{"first_name": re},
			bson.M{"last_name": re},
		}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.User](ctx, s.db.Collection(collUsers), filter, opts)
}

func (s *MongoStore) UpdateUserMetrics(ctx context.Context, id string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil || user == nil {
		return user, err
	}
	formIDs, err := s.formIDsByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.GetResponseCountByFormIDs(ctx, formIDs)
	if err != nil {
		return nil, err
	}
	user.TotalForms = int64(len(formIDs))
	user.TotalResponses = responses
	if errSave := s.UpdateUser(ctx, user); errSave != nil {
		return nil, errSave
	}
	return user, nil
}

// formIDsByUser lists the IDs of every form owned by the user.
func (s *MongoStore) formIDsByUser(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	forms, err := findAll[models.Form](ctx, s.db.Collection(collForms), bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(forms))
	for _, form := range forms {
		ids = append(ids, form.ID)
	}
	return ids, nil
}

func (s *MongoStore) GetForm(ctx context.Context, id string) (*models.Form, error) {
	return findOne[models.Form](ctx, s.db.Collection(collForms), bson.M{"_id": id})
}

func (s *MongoStore) GetFormsByUserID(ctx context.Context, userID string) ([]models.Form, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.Form](ctx, s.db.Collection(collForms), bson.M{"user_id": userID}, opts)
}

func (s *MongoStore) CountFormsByUserID(ctx context.Context, userID string) (int64, error) {
	return s.db.Collection(collForms).CountDocuments(ctx, bson.M{"user_id": userID})
}

func (s *MongoStore) CreateForm(ctx context.Context, form *models.Form) error {
	_, err := s.db.Collection(collForms).InsertOne(ctx, form)
	return err
}

func (s *MongoStore) UpdateForm(ctx context.Context, form *models.Form, fieldsChanged bool) error {
	form.UpdatedAt = time.Now().UTC()
	if _, err := s.db.Collection(collForms).ReplaceOne(ctx, bson.M{"_id": form.ID}, form); err != nil {
		return err
	}
	if !fieldsChanged {
		return nil
	}
	responses, err := s.GetResponsesByFormID(ctx, form.ID)
	if err != nil {
		return err
	}
	for i := range responses {
		if responses[i].Data == nil {
			responses[i].Data = map[string]any{}
		}
		if !applyFieldDefaults(form.Fields, responses[i].Data) {
			continue
		}
		if errSave := s.UpdateResponse(ctx, &responses[i]); errSave != nil {
			return errSave
		}
	}
	return nil
}

func (s *MongoStore) DeleteForm(ctx context.Context, id string) error {
	if _, errDel := s.db.Collection(collResponses).DeleteMany(ctx, bson.M{"form_id": id}); errDel != nil {
		return errDel
	}
	if _, errUpdate := s.db.Collection(collPrivateUsers).UpdateMany(ctx,
		bson.M{"accessible_forms": id},
		bson.M{"$pull": bson.M{"accessible_forms": id}},
	); errUpdate != nil {
		return errUpdate
	}
	_, errDel := s.db.Collection(collForms).DeleteOne(ctx, bson.M{"_id": id})
	return errDel
}

func (s *MongoStore) CreateResponse(ctx context.Context, response *models.Response) error {
	_, err := s.db.Collection(collResponses).InsertOne(ctx, response)
	return err
}

func (s *MongoStore) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	return findOne[models.Response](ctx, s.db.Collection(collResponses), bson.M{"_id": id})
}

func (s *MongoStore) GetResponsesByFormID(ctx context.Context, formID string) ([]models.Response, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	return findAll[models.Response](ctx, s.db.Collection(collResponses), bson.M{"form_id": formID}, opts)
}

func (s *MongoStore) UpdateResponse(ctx context.Context, response *models.Response) error {
	response.UpdatedAt = time.Now().UTC()
	_, err := s.db.Collection(collResponses).ReplaceOne(ctx, bson.M{"_id": response.ID}, response)
	return err
}

func (s *MongoStore) DeleteResponse(ctx context.Context, id string) error {
	_, err := s.db.Collection(collResponses).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) GetResponseCount(ctx context.Context, formID string) (int64, error) {
	return s.db.Collection(collResponses).CountDocuments(ctx, bson.M{"form_id": formID})
}

func (s *MongoStore) GetResponseCountByFormIDs(ctx context.Context, formIDs []string) (int64, error) {
	if len(formIDs) == 0 {
		return 0, nil
	}
	return s.db.Collection(collResponses).CountDocuments(ctx, bson.M{"form_id": bson.M{"$in": formIDs}})
}

func (s *MongoStore) CreatePrivateUser(ctx context.Context, privateUser *models.PrivateUser) error {
	_, err := s.db.Collection(collPrivateUsers).InsertOne(ctx, privateUser)
	return err
}

func (s *MongoStore) GetPrivateUser(ctx context.Context, id string) (*models.PrivateUser, error) {
	return findOne[models.PrivateUser](ctx, s.db.Collection(collPrivateUsers), bson.M{"_id": id})
}

func (s *MongoStore) GetPrivateUserByEmail(ctx context.Context, email string) (*models.PrivateUser, error) {
	filter := bson.M{"email": primitive.Regex{Pattern: "^" + escapeRegex(email) + "$", Options: "i"}}
	return findOne[models.PrivateUser](ctx, s.db.Collection(collPrivateUsers), filter)
}

func (s *MongoStore) GetPrivateUsersByOwnerID(ctx context.Context, ownerID string) ([]models.PrivateUser, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.PrivateUser](ctx, s.db.Collection(collPrivateUsers), bson.M{"owner_id": ownerID}, opts)
}

func (s *MongoStore) UpdatePrivateUser(ctx context.Context, privateUser *models.PrivateUser) error {
	privateUser.UpdatedAt = time.Now().UTC()
	_, err := s.db.Collection(collPrivateUsers).ReplaceOne(ctx, bson.M{"_id": privateUser.ID}, privateUser)
	return err
}

func (s *MongoStore) DeletePrivateUser(ctx context.Context, id string) error {
	_, err := s.db.Collection(collPrivateUsers).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// escapeRegex escapes regex metacharacters in a literal match value.
func escapeRegex(v string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `+`, `\+`, `*`, `\*`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`,
	)
	return replacer.Replace(v)
}
