package repository

import (
	"context"
	"errors"
	"time"

	"user_service/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	userSequence       = "users"
)

type userDocument struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Age       int       `bson:"age"`
	CreatedAt time.Time `bson:"created_at"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

type mongoUserRepository struct {
	users    *mongo.Collection
	counters *mongo.Collection
	log      *logrus.Logger
}

// NewMongoUserRepository stores users in the "users" collection and allocates
// numeric ids from a sequence document in "counters".
func NewMongoUserRepository(database *mongo.Database, logger *logrus.Logger) domain.UserRepository {
	return &mongoUserRepository{
		users:    database.Collection(usersCollection),
		counters: database.Collection(countersCollection),
		log:      logger,
	}
}

func (r *mongoUserRepository) nextID(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *mongoUserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		r.log.Errorf("Repository: Failed to allocate user id: %v", err)
		return nil, domain.PersistenceFailure("save user", err)
	}

	doc := userDocument{
		ID:        id,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		r.log.Errorf("Repository: Failed to insert user '%s': %v", user.Email, err)
		return nil, domain.PersistenceFailure("save user", err)
	}

	r.log.Infof("Repository: User created successfully with ID: %d", id)
	return doc.toUser(), nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warnf("Repository: User with ID %d not found", id)
			return nil, domain.NotFound(id)
		}
		r.log.Errorf("Repository: Failed to get user by ID %d: %v", id, err)
		return nil, domain.PersistenceFailure("get user by id", err)
	}
	return doc.toUser(), nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.log.Errorf("Repository: Failed to list users: %v", err)
		return nil, domain.PersistenceFailure("list users", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.Errorf("Repository: Failed to decode users: %v", err)
		return nil, domain.PersistenceFailure("read users", err)
	}

	users := make([]domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toUser())
	}
	return users, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"name": user.Name, "email": user.Email, "age": user.Age}},
	)
	if err != nil {
		r.log.Errorf("Repository: Failed to update user ID %d: %v", user.ID, err)
		return domain.PersistenceFailure("update user", err)
	}
	if res.MatchedCount == 0 {
		r.log.Warnf("Repository: User with ID %d not found for update", user.ID)
		return domain.NotFound(user.ID)
	}
	r.log.Infof("Repository: User updated successfully with ID: %d", user.ID)
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log.Errorf("Repository: Failed to delete user ID %d: %v", id, err)
		return domain.PersistenceFailure("delete user", err)
	}
	if res.DeletedCount == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent user ID %d", id)
		return domain.NotFound(id)
	}
	r.log.Infof("Repository: User deleted successfully with ID: %d", id)
	return nil
}

func (d *userDocument) toUser() *domain.User {
	return &domain.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		CreatedAt: d.CreatedAt,
	}
}
