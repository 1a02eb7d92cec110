// Package crudal grants bun models generic create, read, update and delete
// operations built from equality filters, run in an explicit session or in
// an ambient one opened for the call, in a blocking and an asynchronous
// form.
//
//	people, err := crudal.Register[Person](db.Dialect(), crudal.WithDB(db))
//	p, err := people.Add(ctx, nil, &Person{Name: "Andrew"}, true)
//	found, err := people.Find(ctx, nil, statement.By("name", "Andrew"))
package crudal
