package repositories

import (
	"context"
	"errors"
	"fmt"
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

// taskDocument is the stored shape of a task. Keys match the wire names.
type taskDocument struct {
	Id          primitive.ObjectID `bson:"_id,omitempty"`
	User        string             `bson:"user"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	Completed   bool               `bson:"completed"`
	Order       int                `bson:"order"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newTaskDocument(task domain.Task) (taskDocument, error) {
	id, err := primitive.ObjectIDFromHex(task.Id)
	if err != nil {
		return taskDocument{}, fmt.Errorf("invalid task id %q: %w", task.Id, err)
	}
	return taskDocument{
		Id:          id,
		User:        task.User,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority.String(),
		Completed:   task.Completed,
		Order:       task.Order,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}, nil
}

func (d taskDocument) toDomain() *domain.Task {
	return &domain.Task{
		Id:          d.Id.Hex(),
		User:        d.User,
		Title:       d.Title,
		Description: d.Description,
		Priority:    domain.Priority(d.Priority),
		Completed:   d.Completed,
		Order:       d.Order,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type TaskRepo struct {
	cli    *mongo.Client
	dbName string
	logger *log.Logger
	tracer trace.Tracer
}

func NewTaskRepo(cli *mongo.Client, dbName string, logger *log.Logger, tracer trace.Tracer) *TaskRepo {
	return &TaskRepo{
		cli:    cli,
		dbName: dbName,
		logger: logger,
		tracer: tracer,
	}
}

func (tr *TaskRepo) getCollection() *mongo.Collection {
	return tr.cli.Database(tr.dbName).Collection("tasks")
}

// EnsureIndexes creates the per-owner listing index.
func (tr *TaskRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	_, err := tr.getCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "order", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (tr *TaskRepo) GetByUser(ctx context.Context, user string) (domain.Tasks, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.GetByUser")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})
	cursor, err := tr.getCollection().Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("find tasks", "user", user, "err", err)
		return nil, err
	}

	var docs []taskDocument
	if err = cursor.All(ctx, &docs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("decode tasks", "user", user, "err", err)
		return nil, err
	}

	tasks := make(domain.Tasks, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

func (tr *TaskRepo) MaxOrder(ctx context.Context, user string) (int, bool, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.MaxOrder")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	var doc taskDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	err := tr.getCollection().FindOne(ctx, bson.M{"user": user}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("find max order", "user", user, "err", err)
		return 0, false, err
	}
	return doc.Order, true, nil
}

func (tr *TaskRepo) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.Insert")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	doc, err := newTaskDocument(task)
	if err != nil {
		return domain.Task{}, err
	}

	if _, err = tr.getCollection().InsertOne(ctx, doc); err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("insert task", "user", task.User, "err", err)
		return domain.Task{}, err
	}

	tr.logger.Debug("task inserted", "id", task.Id, "order", task.Order)
	return task, nil
}

func (tr *TaskRepo) FindByIdAndUser(ctx context.Context, id, user string) (*domain.Task, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.FindByIdAndUser")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound()
	}

	var doc taskDocument
	err = tr.getCollection().FindOne(ctx, bson.M{"_id": objID, "user": user}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrTaskNotFound()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("find task", "id", id, "err", err)
		return nil, err
	}
	return doc.toDomain(), nil
}

func (tr *TaskRepo) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.Update")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(task.Id)
	if err != nil {
		return domain.Task{}, domain.ErrTaskNotFound()
	}

	filter := bson.M{"_id": objID, "user": task.User}
	update := bson.M{
		"$set": bson.M{
			"title":       task.Title,
			"description": task.Description,
			"priority":    task.Priority.String(),
			"completed":   task.Completed,
			"updatedAt":   task.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = tr.getCollection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Task{}, domain.ErrTaskNotFound()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("update task", "id", task.Id, "err", err)
		return domain.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	tr.logger.Debug("task updated", "id", task.Id)
	return *doc.toDomain(), nil
}

func (tr *TaskRepo) Delete(ctx context.Context, id, user string) error {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.Delete")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound()
	}

	result, err := tr.getCollection().DeleteOne(ctx, bson.M{"_id": objID, "user": user})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("delete task", "id", id, "err", err)
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrTaskNotFound()
	}

	tr.logger.Debug("task deleted", "id", id)
	return nil
}

func (tr *TaskRepo) SetOrder(ctx context.Context, id, user string, order int, updatedAt time.Time) (bool, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskRepo.SetOrder")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := tr.getCollection().UpdateOne(
		ctx,
		bson.M{"_id": objID, "user": user},
		bson.M{"$set": bson.M{"order": order, "updatedAt": updatedAt}},
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("set task order", "id", id, "err", err)
		return false, err
	}
	return result.MatchedCount > 0, nil
}
