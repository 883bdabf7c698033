package dao

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/clickgate-io/clickgate/utils"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var (
	ErrNoRows              = sql.ErrNoRows
	ErrConstraintViolation = errors.New("constraint violation")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Queryable is an interface to be used interchangeably for sqlx.Db and sqlx.Tx
type Queryable interface {
	sqlx.ExtContext
	GetContext(context.Context, interface{}, string, ...interface{}) error
	SelectContext(context.Context, interface{}, string, ...interface{}) error
}

type DAO[T any] struct {
	log   *zap.SugaredLogger
	db    *sqlx.DB
	table string
}

func NewDAO[T any](table string, db *sqlx.DB) *DAO[T] {
	return &DAO[T]{
		log:   zap.S(),
		db:    db,
		table: table,
	}
}

func (dao *DAO[T]) debugSQL(sql string, args []interface{}) {
	dao.log.Debugf("[dao] execute: %s", sql)
}

func (dao *DAO[T]) DB(ctx context.Context) Queryable {
	return dao.db
}

func (dao *DAO[T]) UnsafeDB(ctx context.Context) Queryable {
	return dao.db.Unsafe()
}

func (dao *DAO[T]) Get(ctx context.Context, id string) (entity *T, err error) {
	return dao.selectByField(ctx, "id", id)
}

func (dao *DAO[T]) selectByField(ctx context.Context, field string, value string) (entity *T, err error) {
	statement, args := psql.Select("*").From(dao.table).Where(sq.Eq{field: value}).MustSql()
	dao.debugSQL(statement, args)
	entity = new(T)
	err = dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return
}

func (dao *DAO[T]) Count(ctx context.Context, where map[string]interface{}) (total int64, err error) {
	builder := psql.Select("COUNT(*)").From(dao.table)
	if len(where) > 0 {
		builder = builder.Where(where)
	}
	statement, args := builder.MustSql()
	dao.debugSQL(statement, args)
	err = dao.DB(ctx).GetContext(ctx, &total, statement, args...)
	return
}

func (dao *DAO[T]) Delete(ctx context.Context, id string) (bool, error) {
	statement, args := psql.Delete(dao.table).Where(sq.Eq{"id": id}).MustSql()
	dao.debugSQL(statement, args)
	result, err := dao.DB(ctx).ExecContext(ctx, statement, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func travel(entity interface{}, fn func(field reflect.StructField, value reflect.Value)) {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	v := reflect.ValueOf(entity)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		if field.Anonymous {
			travel(value.Interface(), fn)
		} else {
			fn(field, value)
		}
	}
}

func (dao *DAO[T]) Insert(ctx context.Context, entity *T) error {
	columns := make([]string, 0)
	values := make([]interface{}, 0)
	travel(entity, func(f reflect.StructField, v reflect.Value) {
		column := utils.DefaultIfZero(f.Tag.Get("db"), strings.ToLower(f.Name))
		switch column {
		case "created_at": // ignore
		default:
			columns = append(columns, column)
			values = append(values, v.Interface())
		}
	})
	statement, args := psql.Insert(dao.table).Columns(columns...).Values(values...).
		Suffix("RETURNING *").
		MustSql()
	dao.debugSQL(statement, args)
	err := dao.UnsafeDB(ctx).QueryRowxContext(ctx, statement, args...).StructScan(entity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConstraintViolation
		}
	}
	return err
}
