package menu

import (
	"context"
	"errors"
	"strconv"

	"storekeep/db"
	"storekeep/model"
)

func (l *Loop) listCustomers(ctx context.Context) error {
	customers, err := l.store.ListCustomers(ctx)
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		l.out.Muted("No customers yet.")
		return nil
	}
	l.out.Line("Customers:")
	for _, c := range customers {
		l.out.Line("ID=%d | Name=%s | Email=%s | Phone=%s", c.ID, c.Name, c.Email, c.Phone)
	}
	return nil
}

func (l *Loop) createCustomer(ctx context.Context) error {
	name, err := l.readLine(ctx, "Name: ")
	if err != nil {
		return err
	}
	email, err := l.readLine(ctx, "Email: ")
	if err != nil {
		return err
	}
	phone, err := l.readLine(ctx, "Phone: ")
	if err != nil {
		return err
	}

	id, err := l.store.CreateCustomer(ctx, name, email, phone)
	if err != nil {
		return err
	}
	l.out.Success("Customer created with id %d.", id)
	return nil
}

func (l *Loop) updateCustomer(ctx context.Context) error {
	id, err := l.readInt(ctx, "Customer id to update: ")
	if err != nil {
		return err
	}
	current, err := l.store.GetCustomer(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		l.out.Warning("Customer %d not found; nothing updated.", id)
		return nil
	}
	if err != nil {
		return err
	}

	l.out.Muted("Leave a field blank to keep its current value.")
	name, err := l.readKeep(ctx, "Name", current.Name)
	if err != nil {
		return err
	}
	email, err := l.readKeep(ctx, "Email", current.Email)
	if err != nil {
		return err
	}
	phone, err := l.readKeep(ctx, "Phone", current.Phone)
	if err != nil {
		return err
	}

	n, err := l.store.UpdateCustomer(ctx, id, name, email, phone)
	if err != nil {
		return err
	}
	if n == 0 {
		l.out.Warning("Customer %d not found; nothing updated.", id)
		return nil
	}
	l.out.Success("Customer %d updated.", id)
	return nil
}

func (l *Loop) deleteCustomer(ctx context.Context) error {
	id, err := l.readInt(ctx, "Customer id to delete: ")
	if err != nil {
		return err
	}
	cascade, err := l.readConfirm(ctx, "Delete this customer's orders too? [y/N]: ")
	if err != nil {
		return err
	}

	var opts []db.DeleteOption
	if cascade {
		opts = append(opts, db.WithCascade())
	}
	n, err := l.store.DeleteCustomer(ctx, id, opts...)
	if err != nil {
		return err
	}
	if n == 0 {
		l.out.Warning("Customer %d not found; nothing deleted.", id)
		return nil
	}
	l.out.Success("Customer %d deleted.", id)
	return nil
}

func (l *Loop) listOrders(ctx context.Context) error {
	orders, err := l.store.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		l.out.Muted("No orders yet.")
		return nil
	}
	l.out.Line("Orders:")
	for _, o := range orders {
		l.out.Line("ID=%d | CustomerID=%d | Product=%s | Amount=%.2f | Date=%s",
			o.ID, o.CustomerID, o.Product, o.Amount, o.Date)
	}
	return nil
}

func (l *Loop) createOrder(ctx context.Context) error {
	customerID, err := l.readInt(ctx, "Customer id for this order: ")
	if err != nil {
		return err
	}
	product, err := l.readLine(ctx, "Product: ")
	if err != nil {
		return err
	}
	amount, err := l.readFloat(ctx, "Amount (e.g. 199.90): ")
	if err != nil {
		return err
	}
	date, err := l.readLine(ctx, "Date (YYYY-MM-DD, blank for today): ")
	if err != nil {
		return err
	}
	if date == "" {
		date = l.now().Format(model.DateLayout)
	}

	id, err := l.store.CreateOrder(ctx, customerID, product, amount, date)
	if errors.Is(err, db.ErrUnknownCustomer) {
		l.out.Warning("Customer %d does not exist; create the customer first.", customerID)
		return nil
	}
	if err != nil {
		return err
	}
	l.out.Success("Order created with id %d.", id)
	return nil
}

func (l *Loop) updateOrder(ctx context.Context) error {
	id, err := l.readInt(ctx, "Order id to update: ")
	if err != nil {
		return err
	}
	current, err := l.store.GetOrder(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		l.out.Warning("Order %d not found; nothing updated.", id)
		return nil
	}
	if err != nil {
		return err
	}

	l.out.Muted("Leave a field blank to keep its current value.")
	rawCustomer, err := l.readKeep(ctx, "Customer id", strconv.FormatInt(current.CustomerID, 10))
	if err != nil {
		return err
	}
	customerID, err := parseInt(rawCustomer)
	if err != nil {
		return err
	}
	product, err := l.readKeep(ctx, "Product", current.Product)
	if err != nil {
		return err
	}
	rawAmount, err := l.readKeep(ctx, "Amount", strconv.FormatFloat(current.Amount, 'f', -1, 64))
	if err != nil {
		return err
	}
	amount, err := parseFloat(rawAmount)
	if err != nil {
		return err
	}
	date, err := l.readKeep(ctx, "Date", current.Date)
	if err != nil {
		return err
	}

	var opts []db.UpdateOrderOption
	if customerID != current.CustomerID {
		opts = append(opts, db.ReassignTo(customerID))
	}
	n, err := l.store.UpdateOrder(ctx, id, product, amount, date, opts...)
	if errors.Is(err, db.ErrUnknownCustomer) {
		l.out.Warning("Customer %d does not exist; order not updated.", customerID)
		return nil
	}
	if err != nil {
		return err
	}
	if n == 0 {
		l.out.Warning("Order %d not found; nothing updated.", id)
		return nil
	}
	l.out.Success("Order %d updated.", id)
	return nil
}

func (l *Loop) deleteOrder(ctx context.Context) error {
	id, err := l.readInt(ctx, "Order id to delete: ")
	if err != nil {
		return err
	}
	n, err := l.store.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		l.out.Warning("Order %d not found; nothing deleted.", id)
		return nil
	}
	l.out.Success("Order %d deleted.", id)
	return nil
}

func (l *Loop) listOrdersWithCustomer(ctx context.Context) error {
	rows, err := l.store.ListOrdersWithCustomer(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		l.out.Muted("No orders with a customer found.")
		return nil
	}
	for _, r := range rows {
		l.out.Line("OrderID=%d | Product=%s | Amount=%.2f | Date=%s", r.ID, r.Product, r.Amount, r.Date)
		l.out.Line("  -> CustomerID=%d | Name=%s | Email=%s | Phone=%s",
			r.CustomerID, r.CustomerName, r.CustomerEmail, r.CustomerPhone)
		l.out.Rule("-", 40)
	}
	return nil
}

func (l *Loop) seedExample(ctx context.Context) error {
	n, err := l.store.SeedExample(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		l.out.Info("The database already has data; nothing seeded.")
		return nil
	}
	l.out.Success("Inserted %d example rows.", n)
	return nil
}
