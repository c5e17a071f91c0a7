package repositories

import (
	"context"
	"errors"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type userDocument struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		Id:        d.Id.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type UserRepo struct {
	cli    *mongo.Client
	dbName string
	logger *log.Logger
	tracer trace.Tracer
}

func NewUserRepo(cli *mongo.Client, dbName string, logger *log.Logger, tracer trace.Tracer) *UserRepo {
	return &UserRepo{
		cli:    cli,
		dbName: dbName,
		logger: logger,
		tracer: tracer,
	}
}

func (ur *UserRepo) getCollection() *mongo.Collection {
	return ur.cli.Database(ur.dbName).Collection("users")
}

// EnsureIndexes makes email unique so concurrent registrations cannot both win.
func (ur *UserRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	_, err := ur.getCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (ur *UserRepo) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.tracer.Start(ctx, "UserRepo.Insert")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	doc := userDocument{
		Id:        primitive.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
	}
	if user.Id != "" {
		id, err := primitive.ObjectIDFromHex(user.Id)
		if err != nil {
			return domain.User{}, err
		}
		doc.Id = id
	}

	if _, err := ur.getCollection().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrUserAlreadyExists()
		}
		span.SetStatus(codes.Error, err.Error())
		ur.logger.Error("insert user", "err", err)
		return domain.User{}, err
	}

	user.Id = doc.Id.Hex()
	return user, nil
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := ur.tracer.Start(ctx, "UserRepo.GetByEmail")
	defer span.End()

	return ur.findOne(ctx, bson.M{"email": email})
}

func (ur *UserRepo) GetById(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := ur.tracer.Start(ctx, "UserRepo.GetById")
	defer span.End()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound()
	}
	return ur.findOne(ctx, bson.M{"_id": objID})
}

func (ur *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	var doc userDocument
	err := ur.getCollection().FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound()
	}
	if err != nil {
		ur.logger.Error("find user", "err", err)
		return nil, err
	}
	return doc.toDomain(), nil
}
